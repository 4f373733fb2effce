package cache

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
)

type memKV struct {
	data    map[string]string
	ttl     time.Duration
	failGet bool
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	if m.failGet {
		return "", errors.New("connection reset")
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.data[key] = value
	m.ttl = ttl
	return nil
}

type countingProvider struct {
	ratios map[string]float64
	calls  int
}

func (p *countingProvider) GetReliability(_ context.Context, staffID string, _ time.Time) (float64, error) {
	p.calls++
	r, ok := p.ratios[staffID]
	if !ok {
		return 0, scheduling.ErrNoHistory
	}
	return r, nil
}

var asOf = time.Date(2026, time.June, 1, 14, 30, 0, 0, time.UTC)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestReliabilityCache_ReadThrough(t *testing.T) {
	kv := newMemKV()
	p := &countingProvider{ratios: map[string]float64{"a": 0.8}}
	c := NewReliabilityCache(kv, p, 0, quiet())

	for i := 0; i < 3; i++ {
		got, err := c.GetReliability(context.Background(), "a", asOf)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != 0.8 {
			t.Errorf("Expected 0.8, got %v", got)
		}
	}
	if p.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", p.calls)
	}
	if kv.data["reliability:a:2026-06-01"] != "0.8" {
		t.Errorf("Expected day-keyed entry, got %v", kv.data)
	}
	if kv.ttl != DefaultReliabilityTTL {
		t.Errorf("Expected default TTL, got %v", kv.ttl)
	}
}

func TestReliabilityCache_RemembersNoHistory(t *testing.T) {
	kv := newMemKV()
	p := &countingProvider{}
	c := NewReliabilityCache(kv, p, time.Minute, quiet())

	for i := 0; i < 2; i++ {
		if _, err := c.GetReliability(context.Background(), "new", asOf); !errors.Is(err, scheduling.ErrNoHistory) {
			t.Errorf("Expected ErrNoHistory, got %v", err)
		}
	}
	if p.calls != 1 {
		t.Errorf("Expected the miss to be cached, got %d calls", p.calls)
	}
}

func TestReliabilityCache_FallsThroughOnCacheFailure(t *testing.T) {
	kv := newMemKV()
	kv.failGet = true
	p := &countingProvider{ratios: map[string]float64{"a": 0.5}}
	c := NewReliabilityCache(kv, p, 0, quiet())

	got, err := c.GetReliability(context.Background(), "a", asOf)
	if err != nil || got != 0.5 {
		t.Errorf("Expected 0.5 from the provider, got %v, %v", got, err)
	}
}

type failingProvider struct{}

func (failingProvider) GetReliability(context.Context, string, time.Time) (float64, error) {
	return 0, errors.New("db down")
}

func TestReliabilityCache_ProviderErrorNotCached(t *testing.T) {
	kv := newMemKV()
	c := NewReliabilityCache(kv, failingProvider{}, 0, quiet())
	if _, err := c.GetReliability(context.Background(), "a", asOf); err == nil {
		t.Errorf("Expected provider error to propagate")
	}
	if len(kv.data) != 0 {
		t.Errorf("Expected nothing cached, got %v", kv.data)
	}
}
