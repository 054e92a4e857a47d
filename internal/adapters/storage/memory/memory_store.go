// Package memory disponibiliza um storage em memória para desenvolvimento e testes.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gatekit/ratelimit/internal/core/domain"
	"github.com/gatekit/ratelimit/internal/core/ports"
)

type entry struct {
	record    domain.Record
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store guarda registros em um mapa protegido por mutex, com uma goroutine
// de limpeza removendo entradas expiradas periodicamente.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	stop    chan struct{}
	stopped bool
}

var _ ports.Store = (*Store)(nil)

type Config struct {
	CleanupInterval time.Duration
}

func New() *Store {
	return NewWithConfig(Config{CleanupInterval: time.Minute})
}

func NewWithConfig(cfg Config) *Store {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	s := &Store{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}

	go s.cleanupLoop(cfg.CleanupInterval)

	return s
}

func (s *Store) GetRecord(_ context.Context, key string) (domain.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		return domain.Record{}, false, nil
	}
	return e.record, true, nil
}

func (s *Store) SetRecord(_ context.Context, key string, record domain.Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{record: record}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// Len retorna o número de entradas no mapa, incluindo expiradas ainda não
// recolhidas pela limpeza.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
	return nil
}

func (s *Store) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}
