package cache

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
)

const (
	// ReliabilityKeyPrefix namespaces cached ratios
	ReliabilityKeyPrefix = "reliability:"

	// DefaultReliabilityTTL bounds how stale a cached ratio can get
	DefaultReliabilityTTL = time.Hour

	noHistory = "none"
)

// ErrMiss is returned by a KV on a missing key
var ErrMiss = errors.New("cache miss")

// KV is the subset of Redis the cache needs
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
}

// ReliabilityCache is a read-through cache in front of a provider, keyed by
// staff and evaluation day. Cache failures fall through to the provider.
type ReliabilityCache struct {
	kv   KV
	next scheduling.ReliabilityProvider
	ttl  time.Duration
	lg   *log.Logger
}

// NewReliabilityCache wraps next with kv
func NewReliabilityCache(kv KV, next scheduling.ReliabilityProvider, ttl time.Duration, lg *log.Logger) *ReliabilityCache {
	if ttl == 0 {
		ttl = DefaultReliabilityTTL
	}
	if lg == nil {
		lg = log.Default()
	}
	return &ReliabilityCache{kv: kv, next: next, ttl: ttl, lg: lg}
}

func (c *ReliabilityCache) key(staffID string, asOf time.Time) string {
	return ReliabilityKeyPrefix + staffID + ":" + models.DateOnly(asOf).Format(models.DateLayout)
}

// GetReliability serves from cache, otherwise asks the wrapped provider and
// remembers both ratios and the absence of history.
func (c *ReliabilityCache) GetReliability(ctx context.Context, staffID string, asOf time.Time) (float64, error) {
	key := c.key(staffID, asOf)

	raw, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		if raw == noHistory {
			return 0, scheduling.ErrNoHistory
		}
		if ratio, perr := strconv.ParseFloat(raw, 64); perr == nil {
			return ratio, nil
		}
		c.lg.Printf("discarding malformed cache entry %s=%q", key, raw)
	case !errors.Is(err, ErrMiss):
		c.lg.Printf("reliability cache get %s: %v", key, err)
	}

	ratio, err := c.next.GetReliability(ctx, staffID, asOf)
	value := strconv.FormatFloat(ratio, 'f', -1, 64)
	if errors.Is(err, scheduling.ErrNoHistory) {
		value = noHistory
	} else if err != nil {
		return 0, err
	}
	if serr := c.kv.Set(ctx, key, value, c.ttl); serr != nil {
		c.lg.Printf("reliability cache set %s: %v", key, serr)
	}
	return ratio, err
}
