package ports

import "context"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DiagnosticSink recebe eventos de diagnóstico do limiter (fire-and-forget).
// Implementações devem ser seguras para uso concorrente e nunca bloquear.
type DiagnosticSink interface {
	CaptureMessage(ctx context.Context, severity Severity, message string, fields map[string]any)
}
