package gpu

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var discard = slog.New(nopHandler{})

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(discard)
}

// slogger returns the logger for the stamp accelerator. Records carry
// component=gpu.
func slogger() *slog.Logger { return loggerPtr.Load() }

// setLogger installs l, tagged with the component. nil silences the
// package.
func setLogger(l *slog.Logger) {
	if l == nil {
		loggerPtr.Store(discard)
		return
	}
	loggerPtr.Store(l.With("component", "gpu"))
}
