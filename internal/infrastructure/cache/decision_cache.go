package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/phishguard/phishguard-backend/internal/domain/policy"
	"github.com/phishguard/phishguard-backend/internal/service/triage"
)

// DecisionCache memoizes triage outcomes per (url, probability) pair.
// Only terminal fast-path lookups benefit; a miss is never an error for
// callers, just a signal to evaluate.
type DecisionCache struct {
	cache Cache
	ttl   time.Duration
}

// NewDecisionCache wraps a Cache with decision-specific keys and TTL.
func NewDecisionCache(cache Cache, ttl time.Duration) *DecisionCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &DecisionCache{cache: cache, ttl: ttl}
}

// Get returns the cached outcome, or (nil, false) on a miss or any
// cache-layer error. A stored payload whose decision label no longer
// parses is treated as a miss rather than served.
func (c *DecisionCache) Get(ctx context.Context, url string, pMalicious float64) (*triage.DecisionOutcome, bool) {
	var outcome triage.DecisionOutcome
	if err := c.cache.GetJSON(ctx, decisionKey(url, pMalicious), &outcome); err != nil {
		return nil, false
	}
	if _, err := policy.ParseDecision(string(outcome.FinalDecision)); err != nil {
		return nil, false
	}
	return &outcome, true
}

// Put stores an outcome; failures are the caller's to log, not to act on.
func (c *DecisionCache) Put(ctx context.Context, url string, pMalicious float64, outcome *triage.DecisionOutcome) error {
	return c.cache.SetJSON(ctx, decisionKey(url, pMalicious), outcome, c.ttl)
}

func decisionKey(url string, pMalicious float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%.6f", url, pMalicious)))
	return "triage:decision:" + hex.EncodeToString(sum[:16])
}
