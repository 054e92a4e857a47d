// Package middleware disponibiliza middlewares HTTP específicos da aplicação.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gatekit/ratelimit/internal/core/domain"
	"github.com/gatekit/ratelimit/internal/core/ports"
)

const rateLimitExceededMessage = "you have reached the maximum number of requests or actions allowed within a certain time frame"

const (
	headerLimit      = "X-RateLimit-Limit"
	headerRemaining  = "X-RateLimit-Remaining"
	headerReset      = "X-RateLimit-Reset"
	headerRetryAfter = "Retry-After"

	headerUserID = "X-User-ID"
	headerAPIKey = "X-API-Key"
)

// DecisionFunc avalia uma requisição já traduzida para o domínio.
type DecisionFunc func(ctx context.Context, req domain.Request) domain.Result

// NewRateLimit aplica uma única política a todas as requisições do grupo.
func NewRateLimit(limiter ports.Limiter, policy domain.Policy) (func(http.Handler) http.Handler, error) {
	if limiter == nil {
		return nil, fmt.Errorf("limiter is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("policy %q: %w", policy.Name, err)
	}
	return NewRateLimitFunc(func(ctx context.Context, req domain.Request) domain.Result {
		return limiter.Check(ctx, req, policy)
	}), nil
}

// NewRateLimitFunc aplica uma decisão arbitrária, por exemplo o Check de um
// Composite burst+sustained.
func NewRateLimitFunc(decide DecisionFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := decide(r.Context(), domainRequest(r))

			// Em fail-open o estado do contador é desconhecido; anotar
			// headers de quota aqui seria mentir para o cliente.
			if !result.FailedOpen {
				w.Header().Set(headerLimit, strconv.Itoa(result.Limit))
				w.Header().Set(headerRemaining, strconv.Itoa(result.Remaining))
				w.Header().Set(headerReset, strconv.FormatInt(result.ResetAt.Unix(), 10))
			}

			if result.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			writeTooManyRequests(w, r, result)
		})
	}
}

func domainRequest(r *http.Request) domain.Request {
	return domain.Request{
		Origin: extractOrigin(r),
		UserID: strings.TrimSpace(r.Header.Get(headerUserID)),
		APIKey: strings.TrimSpace(r.Header.Get(headerAPIKey)),
		Path:   r.URL.Path,
	}
}

// extractOrigin resolve o identificador de origem na ordem: header do proxy
// reverso confiável, real IP, primeira entrada da lista de encaminhamento.
// Requisições sem nenhum deles compartilham o balde "unknown".
func extractOrigin(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	xff := r.Header.Get("X-Forwarded-For")
	if idx := strings.IndexByte(xff, ','); idx >= 0 {
		xff = xff[:idx]
	}
	if ip := strings.TrimSpace(xff); ip != "" {
		return ip
	}

	return domain.UnknownOrigin
}

func writeTooManyRequests(w http.ResponseWriter, r *http.Request, result domain.Result) {
	zerolog.Ctx(r.Context()).Warn().
		Int("limit", result.Limit).
		Int("retry_after", result.RetryAfter).
		Msg("request rate limited")

	if span := trace.SpanFromContext(r.Context()); span.IsRecording() {
		span.AddEvent("ratelimit.rejected", trace.WithAttributes(
			attribute.Int("ratelimit.limit", result.Limit),
			attribute.Int("ratelimit.retry_after", result.RetryAfter),
		))
	}

	message := result.Message
	if message == "" {
		message = rateLimitExceededMessage
	}

	w.Header().Set(headerRetryAfter, strconv.Itoa(result.RetryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":      message,
		"retryAfter": result.RetryAfter,
	})
}
