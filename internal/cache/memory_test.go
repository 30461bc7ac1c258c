package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); err != ErrMiss {
		t.Fatalf("expected ErrMiss for absent key, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("expected v, got %q", got)
	}
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	if err := s.Set(ctx, "k", []byte("v"), 300*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Inside the TTL window.
	now = now.Add(299 * time.Second)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("expected hit inside TTL, got %v", err)
	}

	// Past the TTL window the entry expires on read.
	now = now.Add(2 * time.Second)
	if _, err := s.Get(ctx, "k"); err != ErrMiss {
		t.Fatalf("expected ErrMiss after TTL, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected expired entry to be removed, have %d entries", s.Len())
	}
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(1000 * time.Hour)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("expected zero-TTL entry to survive, got %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	in := payload{Name: "BTC/USDT", Count: 3}
	if err := SetJSON(ctx, s, "p", in, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var out payload
	if err := GetJSON(ctx, s, "p", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}

	// Corrupt entries read as a miss, not an error.
	if err := s.Set(ctx, "bad", []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := GetJSON(ctx, s, "bad", &out); err != ErrMiss {
		t.Fatalf("expected ErrMiss for corrupt entry, got %v", err)
	}
}
