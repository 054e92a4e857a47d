// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"
	"time"

	"github.com/gatekit/ratelimit/internal/core/domain"
)

// Store é o armazenamento chave-valor dos contadores. GetRecord retorna
// found=false para chave ausente sem erro; erro indica apenas falha de
// transporte ou de armazenamento.
type Store interface {
	GetRecord(ctx context.Context, key string) (record domain.Record, found bool, err error)
	SetRecord(ctx context.Context, key string, record domain.Record, ttl time.Duration) error
}
