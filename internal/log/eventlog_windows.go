//go:build windows

package log

import (
	"errors"

	"golang.org/x/sys/windows/svc/eventlog"
)

const eventID = 1

type windowsEventLog struct {
	l *eventlog.Log
}

func openHostLog(source string) (HostLog, error) {
	l, err := eventlog.Open(source)
	if err != nil {
		// the source is registered on first use, which needs admin rights
		if instErr := eventlog.InstallAsEventCreate(source, eventlog.Error|eventlog.Warning|eventlog.Info); instErr != nil {
			return nil, errors.Join(err, instErr)
		}
		l, err = eventlog.Open(source)
		if err != nil {
			return nil, err
		}
	}
	return windowsEventLog{l: l}, nil
}

func (w windowsEventLog) Info(msg string) error { return w.l.Info(eventID, msg) }
func (w windowsEventLog) Warning(msg string) error { return w.l.Warning(eventID, msg) }
func (w windowsEventLog) Error(msg string) error { return w.l.Error(eventID, msg) }
func (w windowsEventLog) Close() error { return w.l.Close() }
