package ports

import (
	"context"

	"github.com/gatekit/ratelimit/internal/core/domain"
)

// Limiter decide se uma requisição é admitida sob uma política. A chamada
// nunca retorna erro: falhas internas resolvem em admissão (fail-open).
type Limiter interface {
	Check(ctx context.Context, req domain.Request, policy domain.Policy) domain.Result
}
