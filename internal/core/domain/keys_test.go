package domain

import (
	"errors"
	"testing"
	"time"
)

func TestOriginKey(t *testing.T) {
	if got := OriginKey(Request{Origin: "203.0.113.7"}); got != "rate_limit:203.0.113.7" {
		t.Fatalf("unexpected key: %q", got)
	}

	// Sem origem derivável, tudo cai no balde compartilhado.
	if got := OriginKey(Request{}); got != "rate_limit:unknown" {
		t.Fatalf("expected unknown bucket, got %q", got)
	}
}

func TestUserKey(t *testing.T) {
	if got := UserKey(Request{Origin: "10.0.0.1", UserID: "42"}); got != "rate_limit:user:42" {
		t.Fatalf("unexpected key: %q", got)
	}
	if got := UserKey(Request{Origin: "10.0.0.1"}); got != "rate_limit:10.0.0.1" {
		t.Fatalf("expected fallback to origin key, got %q", got)
	}
}

func TestAPIKeyKey(t *testing.T) {
	if got := APIKeyKey(Request{Origin: "10.0.0.1", APIKey: "abc123"}); got != "rate_limit:api:abc123" {
		t.Fatalf("unexpected key: %q", got)
	}
	if got := APIKeyKey(Request{Origin: "10.0.0.1"}); got != "rate_limit:10.0.0.1" {
		t.Fatalf("expected fallback to origin key, got %q", got)
	}
}

func TestEndpointKey(t *testing.T) {
	got := EndpointKey(Request{Origin: "10.0.0.1", Path: "/api/quote"})
	if got != "rate_limit:10.0.0.1:/api/quote" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestPrefixedKey(t *testing.T) {
	fn := PrefixedKey("burst:", nil)
	if got := fn(Request{Origin: "10.0.0.1"}); got != "burst:rate_limit:10.0.0.1" {
		t.Fatalf("unexpected key: %q", got)
	}

	fn = PrefixedKey("sustained:", UserKey)
	if got := fn(Request{UserID: "42"}); got != "sustained:rate_limit:user:42" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestPolicyValidate(t *testing.T) {
	valid := Policy{Window: time.Minute, Limit: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid policy, got %v", err)
	}

	invalid := Policy{Window: time.Minute, Limit: 0}
	if err := invalid.Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}

	invalid = Policy{Window: 0, Limit: 1}
	if err := invalid.Validate(); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestRecordExpired(t *testing.T) {
	now := time.Now()
	record := Record{Count: 3, ResetAt: now.Add(time.Second)}

	if record.Expired(now) {
		t.Fatalf("record should not be expired before reset")
	}
	if !record.Expired(now.Add(time.Second)) {
		t.Fatalf("record should be expired exactly at reset")
	}
}
