// Package logsink encaminha diagnósticos do limiter para um logger zerolog.
package logsink

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gatekit/ratelimit/internal/core/ports"
)

type Sink struct {
	logger zerolog.Logger
}

var _ ports.DiagnosticSink = (*Sink)(nil)

func New(logger zerolog.Logger) *Sink {
	return &Sink{logger: logger.With().Str("component", "ratelimit").Logger()}
}

func (s *Sink) CaptureMessage(_ context.Context, severity ports.Severity, message string, fields map[string]any) {
	var event *zerolog.Event
	switch severity {
	case ports.SeverityError:
		event = s.logger.Error()
	case ports.SeverityWarning:
		event = s.logger.Warn()
	default:
		event = s.logger.Info()
	}
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(message)
}
