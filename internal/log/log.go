package log

import (
	"context"
	"io"
	"log/slog"
)

type slogKeyT struct{}

var slogKey slogKeyT

// Source tags every record emitted by winc and names the host event log source.
const Source = "WinC"

type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(handler slog.Handler) ContextHandler {
	return ContextHandler{
		Handler: handler,
	}
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if a, ok := ctx.Value(slogKey).([]slog.Attr); ok {
		r.AddAttrs(a...)
	}

	return h.Handler.Handle(ctx, r)
}

func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithGroup(name)}
}

func ContextAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	a, ok := ctx.Value(slogKey).([]slog.Attr)
	if !ok || a == nil {
		a = make([]slog.Attr, 0, len(attrs))
	} else {
		a = append([]slog.Attr(nil), a...)
	}
	a = append(a, attrs...)
	return context.WithValue(ctx, slogKey, a)
}

// Event returns the attribute used for classified pipeline events such as
// ConfigMissing or CleanupError.
func Event(kind string) slog.Attr {
	return slog.String("event", kind)
}

func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// New returns a JSON logger writing to w, enriched by ContextAttrs.
func New(w io.Writer, verbose bool) *slog.Logger {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: false,
		Level:     Level(verbose),
	})
	ctxHandler := NewContextHandler(base)
	return slog.New(ctxHandler)
}
