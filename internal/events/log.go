package events

import (
	"context"
	"log/slog"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink logs events at level.
func NewLogSink(logger *slog.Logger, level slog.Level) *LogSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogSink{logger: logger, level: level}
}

func (s *LogSink) Emit(name string, payload Payload) {
	attrs := []slog.Attr{
		slog.String("event", name),
		slog.String("form", payload.Form),
	}
	if payload.Code != 0 {
		attrs = append(attrs, slog.Int("code", payload.Code))
	}
	if payload.Type != "" {
		attrs = append(attrs, slog.String("type", payload.Type))
	}
	if payload.Error != nil {
		attrs = append(attrs, slog.String("error_type", payload.Error.Type))
	}
	if payload.Meta != nil && payload.Meta.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", payload.Meta.RequestID))
	}
	s.logger.LogAttrs(context.Background(), s.level, "address verification event", attrs...)
}
