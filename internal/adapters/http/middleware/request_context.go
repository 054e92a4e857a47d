package middleware

import (
	"net/http"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const requestIDHeader = "X-Request-ID"

const tracerName = "github.com/gatekit/ratelimit/internal/adapters/http/middleware"

// WithRequestContext anexa a cada requisição um request ID, um logger filho
// com campos da requisição e um span de servidor, e loga a conclusão.
func WithRequestContext(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = xid.New().String()
			}
			w.Header().Set(requestIDHeader, reqID)

			logger := base.With().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx = logger.WithContext(ctx)

			tracer := otel.Tracer(tracerName)
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.RequestURI()),
				attribute.String("request.id", reqID),
			)

			ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", ww.status))
			if ww.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(ww.status))
			}
			span.End()

			logger.Info().Int("status", ww.status).Msg("request completed")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
