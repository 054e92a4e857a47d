package services

import (
	"context"
	"fmt"

	"github.com/gatekit/ratelimit/internal/core/domain"
	"github.com/gatekit/ratelimit/internal/core/ports"
)

// Composite aplica duas verificações independentes à mesma requisição: uma
// janela curta e estrita (burst) e uma longa e tolerante (sustained). As
// chaves recebem namespaces distintos, então os contadores nunca colidem.
type Composite struct {
	limiter   ports.Limiter
	burst     domain.Policy
	sustained domain.Policy
}

// NewComposite valida as duas políticas e fixa os namespaces de chave.
func NewComposite(limiter ports.Limiter, burst, sustained domain.Policy) (*Composite, error) {
	if limiter == nil {
		return nil, fmt.Errorf("limiter is required")
	}
	if err := burst.Validate(); err != nil {
		return nil, fmt.Errorf("burst policy %q: %w", burst.Name, err)
	}
	if err := sustained.Validate(); err != nil {
		return nil, fmt.Errorf("sustained policy %q: %w", sustained.Name, err)
	}

	burst.KeyFunc = domain.PrefixedKey("burst:", burst.KeyFunc)
	sustained.KeyFunc = domain.PrefixedKey("sustained:", sustained.KeyFunc)

	return &Composite{limiter: limiter, burst: burst, sustained: sustained}, nil
}

// Check rejeita se qualquer sub-verificação rejeitar. A de burst roda
// primeiro por ser a mais barata de estourar. Cada sub-verificação aplica
// fail-open por conta própria.
func (c *Composite) Check(ctx context.Context, req domain.Request) domain.Result {
	burst := c.limiter.Check(ctx, req, c.burst)
	if !burst.Allowed {
		return burst
	}

	sustained := c.limiter.Check(ctx, req, c.sustained)
	if !sustained.Allowed {
		return sustained
	}

	// Ambas admitiram: reporta a restrição mais apertada, para que os
	// headers anotados reflitam o limite que de fato vincula o chamador.
	if sustained.Remaining < burst.Remaining {
		return sustained
	}
	return burst
}
