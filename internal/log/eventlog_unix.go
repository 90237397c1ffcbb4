//go:build unix

package log

import (
	"log/syslog"
)

type syslogLog struct {
	w *syslog.Writer
}

func openHostLog(source string) (HostLog, error) {
	w, err := syslog.New(syslog.LOG_USER|syslog.LOG_INFO, source)
	if err != nil {
		return nil, err
	}
	return syslogLog{w: w}, nil
}

func (s syslogLog) Info(msg string) error { return s.w.Info(msg) }
func (s syslogLog) Warning(msg string) error { return s.w.Warning(msg) }
func (s syslogLog) Error(msg string) error { return s.w.Err(msg) }
func (s syslogLog) Close() error { return s.w.Close() }
