// Package services implementa a lógica central de rate limiting.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gatekit/ratelimit/internal/core/domain"
	"github.com/gatekit/ratelimit/internal/core/ports"
)

// Service aplica políticas de janela fixa sobre um Store externo. A
// corretude entre requisições concorrentes da mesma chave depende do Store;
// a corrida entre leitura e escrita pode subcontar (admitir um pouco além do
// limite), nunca rejeitar indevidamente.
type Service struct {
	storage ports.Store
	sink    ports.DiagnosticSink
	now     func() time.Time
}

var _ ports.Limiter = (*Service)(nil)

// NewService cria uma nova instância do serviço. O sink é opcional.
func NewService(storage ports.Store, sink ports.DiagnosticSink) (*Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if sink == nil {
		sink = noopSink{}
	}
	return &Service{storage: storage, sink: sink, now: time.Now}, nil
}

// Check avalia a requisição contra a política: exatamente uma leitura e no
// máximo uma escrita no Store por chamada. Qualquer falha de infraestrutura
// resolve em admissão sem mutação de contador (fail-open).
func (s *Service) Check(ctx context.Context, req domain.Request, policy domain.Policy) domain.Result {
	now := s.now()

	// Origens na whitelist são invisíveis ao limiter: não consomem quota
	// nem tocam o Store.
	if policy.Whitelisted(req.Origin) {
		return domain.Result{
			Allowed:   true,
			Limit:     policy.Limit,
			Remaining: policy.Limit,
			ResetAt:   now.Add(policy.Window),
		}
	}

	key, err := s.deriveKey(req, policy)
	if err != nil {
		s.sink.CaptureMessage(ctx, ports.SeverityWarning, "rate limit key derivation failed", map[string]any{
			"policy": policy.Name,
			"error":  err.Error(),
		})
		return s.failOpen(policy, now)
	}

	record, found, err := s.storage.GetRecord(ctx, key)
	if err != nil {
		s.sink.CaptureMessage(ctx, ports.SeverityWarning, "rate limit check failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return s.failOpen(policy, now)
	}

	count := record.Count
	resetAt := record.ResetAt
	if !found || record.Expired(now) {
		// Reset preguiçoso: a janela nova só existe virtualmente até a
		// primeira escrita.
		count = 0
		resetAt = now.Add(policy.Window)
	}

	if count >= int64(policy.Limit) {
		s.sink.CaptureMessage(ctx, ports.SeverityWarning, "rate limit exceeded", map[string]any{
			"key":   key,
			"count": count,
			"limit": policy.Limit,
		})
		return domain.Result{
			Limit:      policy.Limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfterSeconds(resetAt, now),
			Message:    policy.Message,
		}
	}

	updated := domain.Record{Count: count + 1, ResetAt: resetAt}
	if err := s.storage.SetRecord(ctx, key, updated, resetAt.Sub(now)); err != nil {
		s.sink.CaptureMessage(ctx, ports.SeverityWarning, "rate limit record write failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return s.failOpen(policy, now)
	}

	return domain.Result{
		Allowed:   true,
		Limit:     policy.Limit,
		Remaining: policy.Limit - int(updated.Count),
		ResetAt:   resetAt,
	}
}

// deriveKey isola o KeyFunc fornecido pelo chamador: um pânico na derivação
// vira erro e segue a mesma rota de fail-open das falhas de Store.
func (s *Service) deriveKey(req domain.Request, policy domain.Policy) (key string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("key generator panicked: %v", r)
		}
	}()
	return policy.Key(req), nil
}

func (s *Service) failOpen(policy domain.Policy, now time.Time) domain.Result {
	// O estado do contador é indeterminado; Remaining reporta o limite
	// cheio e FailedOpen sinaliza ao transporte que os headers de quota
	// não são confiáveis.
	return domain.Result{
		Allowed:    true,
		Limit:      policy.Limit,
		Remaining:  policy.Limit,
		ResetAt:    now.Add(policy.Window),
		FailedOpen: true,
	}
}

func retryAfterSeconds(resetAt, now time.Time) int {
	remaining := resetAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

type noopSink struct{}

func (noopSink) CaptureMessage(context.Context, ports.Severity, string, map[string]any) {}
