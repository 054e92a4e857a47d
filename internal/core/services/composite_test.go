package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatekit/ratelimit/internal/core/domain"
)

func testCompositePolicies() (domain.Policy, domain.Policy) {
	burst := domain.Policy{
		Name:    "burst",
		Window:  time.Second,
		Limit:   3,
		Message: "burst limit exceeded",
	}
	sustained := domain.Policy{
		Name:    "sustained",
		Window:  time.Minute,
		Limit:   10,
		Message: "sustained limit exceeded",
	}
	return burst, sustained
}

func TestComposite_BurstTriggersFirst(t *testing.T) {
	store := newMockStore()
	clock := newFakeClock()
	service := newTestService(t, store, nil, clock)

	burst, sustained := testCompositePolicies()
	composite, err := NewComposite(service, burst, sustained)
	require.NoError(t, err)

	req := domain.Request{Origin: "10.0.0.1"}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := composite.Check(ctx, req)
		require.True(t, result.Allowed, "request %d should be allowed", i+1)
	}

	result := composite.Check(ctx, req)
	require.False(t, result.Allowed)
	require.Equal(t, "burst limit exceeded", result.Message)
}

func TestComposite_SustainedTriggers(t *testing.T) {
	store := newMockStore()
	clock := newFakeClock()
	service := newTestService(t, store, nil, clock)

	burst, sustained := testCompositePolicies()
	composite, err := NewComposite(service, burst, sustained)
	require.NoError(t, err)

	req := domain.Request{Origin: "10.0.0.1"}
	ctx := context.Background()

	// Dez requisições espalhadas pela janela longa, nunca estourando o burst.
	for i := 0; i < 10; i++ {
		if i > 0 {
			clock.Advance(6 * time.Second)
		}
		result := composite.Check(ctx, req)
		require.True(t, result.Allowed, "request %d should be allowed", i+1)
	}

	clock.Advance(2 * time.Second)
	result := composite.Check(ctx, req)
	require.False(t, result.Allowed)
	require.Equal(t, "sustained limit exceeded", result.Message)
}

func TestComposite_NamespacedKeysNeverCollide(t *testing.T) {
	store := newMockStore()
	service := newTestService(t, store, nil, nil)

	burst, sustained := testCompositePolicies()
	composite, err := NewComposite(service, burst, sustained)
	require.NoError(t, err)

	composite.Check(context.Background(), domain.Request{Origin: "10.0.0.1"})

	var hasBurst, hasSustained bool
	for key := range store.records {
		if strings.HasPrefix(key, "burst:") {
			hasBurst = true
		}
		if strings.HasPrefix(key, "sustained:") {
			hasSustained = true
		}
	}
	require.True(t, hasBurst, "expected a burst-namespaced counter")
	require.True(t, hasSustained, "expected a sustained-namespaced counter")
	require.Len(t, store.records, 2)
}

func TestComposite_ReportsTighterRemaining(t *testing.T) {
	store := newMockStore()
	service := newTestService(t, store, nil, nil)

	burst, sustained := testCompositePolicies()
	composite, err := NewComposite(service, burst, sustained)
	require.NoError(t, err)

	result := composite.Check(context.Background(), domain.Request{Origin: "10.0.0.1"})
	require.True(t, result.Allowed)
	require.Equal(t, burst.Limit-1, result.Remaining)
	require.Equal(t, burst.Limit, result.Limit)
}

func TestComposite_FailsOpenOnStorageError(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("connection refused")
	service := newTestService(t, store, nil, nil)

	burst, sustained := testCompositePolicies()
	composite, err := NewComposite(service, burst, sustained)
	require.NoError(t, err)

	result := composite.Check(context.Background(), domain.Request{Origin: "10.0.0.1"})
	require.True(t, result.Allowed)
	require.True(t, result.FailedOpen)
}

func TestNewComposite_RejectsInvalidPolicies(t *testing.T) {
	store := newMockStore()
	service := newTestService(t, store, nil, nil)

	burst, sustained := testCompositePolicies()

	invalid := burst
	invalid.Limit = 0
	_, err := NewComposite(service, invalid, sustained)
	require.ErrorIs(t, err, domain.ErrInvalidLimit)

	invalid = sustained
	invalid.Window = 0
	_, err = NewComposite(service, burst, invalid)
	require.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = NewComposite(nil, burst, sustained)
	require.Error(t, err)
}
