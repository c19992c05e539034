package logr

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-logr/logr"
)

var _ logr.LogSink = (*slogSink)(nil)

// slogSink is a logr sink that hands records to a slog handler, mapping logr
// v-levels onto slog levels below info.
type slogSink struct {
	handler slog.Handler
	name    string
}

func newLogSink(h slog.Handler) *slogSink {
	return &slogSink{handler: h}
}

func (s *slogSink) Init(logr.RuntimeInfo) {}

func (s *slogSink) Enabled(level int) bool {
	return s.handler.Enabled(context.Background(), toSlogLevel(level))
}

func (s *slogSink) Info(level int, msg string, keysAndValues ...any) {
	s.handle(toSlogLevel(level), msg, keysAndValues...)
}

func (s *slogSink) Error(err error, msg string, keysAndValues ...any) {
	s.handle(slog.LevelError, msg, append([]any{"error", err}, keysAndValues...)...)
}

func (s *slogSink) WithValues(keysAndValues ...any) logr.LogSink {
	return &slogSink{
		handler: s.handler.WithAttrs(toAttrs(keysAndValues)),
		name:    s.name,
	}
}

func (s *slogSink) WithName(name string) logr.LogSink {
	if s.name != "" {
		name = s.name + "/" + name
	}
	return &slogSink{handler: s.handler, name: name}
}

func (s *slogSink) handle(level slog.Level, msg string, keysAndValues ...any) {
	ctx := context.Background()
	if !s.handler.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	if s.name != "" {
		r.AddAttrs(slog.String("logger", s.name))
	}
	r.Add(keysAndValues...)
	_ = s.handler.Handle(ctx, r)
}

func toAttrs(keysAndValues []any) []slog.Attr {
	r := slog.NewRecord(time.Time{}, 0, "", 0)
	r.Add(keysAndValues...)
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}

// LevelHandler wraps a Handler with an Enabled method that returns false for
// levels below a minimum.
type LevelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

func NewLevelHandler(level slog.Leveler, h slog.Handler) *LevelHandler {
	// Optimization: avoid chains of LevelHandlers.
	if lh, ok := h.(*LevelHandler); ok {
		h = lh.Handler()
	}
	return &LevelHandler{level, h}
}

func (h *LevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithAttrs(attrs))
}

func (h *LevelHandler) WithGroup(name string) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithGroup(name))
}

// Handler returns the Handler wrapped by h.
func (h *LevelHandler) Handler() slog.Handler {
	return h.handler
}
