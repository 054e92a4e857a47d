// Package redis disponibiliza a implementação do storage baseada em Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/gatekit/ratelimit/internal/core/domain"
	"github.com/gatekit/ratelimit/internal/core/ports"
)

type Store struct {
	client *redis.Client
}

var _ ports.Store = (*Store)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// GetRecord lê o registro da chave. Chave ausente não é erro.
func (s *Store) GetRecord(ctx context.Context, key string) (domain.Record, bool, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, err
	}

	var record domain.Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.Record{}, false, fmt.Errorf("corrupt rate limit record at %s: %w", key, err)
	}
	return record, true, nil
}

// SetRecord grava o registro com expiração; o Redis descarta o registro
// sozinho quando a janela fecha.
func (s *Store) SetRecord(ctx context.Context, key string, record domain.Record, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, ttl).Err()
}
