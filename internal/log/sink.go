package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

const (
	SinkStderr   = "stderr"
	SinkStdout   = "stdout"
	SinkDiscard  = "discard"
	SinkEventLog = "eventlog"
)

// Open builds a logger for the --log target: one of the Sink constants or a
// file path, which is opened for appending. The returned closer releases the
// underlying file or event log handle.
func Open(target string, verbose bool) (*slog.Logger, io.Closer, error) {
	switch target {
	case "", SinkStderr:
		return New(os.Stderr, verbose), nopCloser{}, nil
	case SinkStdout:
		return New(os.Stdout, verbose), nopCloser{}, nil
	case SinkDiscard:
		return New(io.Discard, verbose), nopCloser{}, nil
	case SinkEventLog:
		host, err := openHostLog(Source)
		if err != nil {
			return nil, nil, fmt.Errorf("opening host event log: %w", err)
		}
		return slog.New(NewContextHandler(NewHostHandler(host, Level(verbose)))), host, nil
	default:
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return New(f, verbose), f, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// HostLog is the host operating-system event log.
type HostLog interface {
	Info(msg string) error
	Warning(msg string) error
	Error(msg string) error
	Close() error
}

// HostHandler formats records as logfmt text and sends each one as a single
// entry to a HostLog, choosing the entry type by record level.
type HostHandler struct {
	host  HostLog
	mx    *sync.Mutex
	buf   *bytes.Buffer
	inner slog.Handler
}

func NewHostHandler(host HostLog, level slog.Leveler) *HostHandler {
	buf := &bytes.Buffer{}
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// the event log stamps entries itself
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	})
	return &HostHandler{
		host:  host,
		mx:    &sync.Mutex{},
		buf:   buf,
		inner: inner,
	}
}

func (h *HostHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *HostHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mx.Lock()
	defer h.mx.Unlock()

	h.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	msg := string(bytes.TrimRight(h.buf.Bytes(), "\n"))

	switch {
	case r.Level >= slog.LevelError:
		return h.host.Error(msg)
	case r.Level >= slog.LevelWarn:
		return h.host.Warning(msg)
	default:
		return h.host.Info(msg)
	}
}

func (h *HostHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &HostHandler{host: h.host, mx: h.mx, buf: h.buf, inner: h.inner.WithAttrs(attrs)}
}

func (h *HostHandler) WithGroup(name string) slog.Handler {
	return &HostHandler{host: h.host, mx: h.mx, buf: h.buf, inner: h.inner.WithGroup(name)}
}
