package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phishguard/phishguard-backend/internal/domain/policy"
	"github.com/phishguard/phishguard-backend/internal/infrastructure/config"
	"github.com/phishguard/phishguard-backend/internal/service/triage"
)

func testCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(&config.RedisConfig{URL: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCacheJSONRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	in := map[string]string{"hello": "world"}
	require.NoError(t, c.SetJSON(ctx, "k", in, time.Minute))

	var out map[string]string
	require.NoError(t, c.GetJSON(ctx, "k", &out))
	assert.Equal(t, in, out)
}

func TestRedisCacheMiss(t *testing.T) {
	c, _ := testCache(t)

	var out map[string]string
	err := c.GetJSON(context.Background(), "absent", &out)
	require.Error(t, err)
	assert.IsType(t, ErrCacheKeyNotFound{}, err)
}

func TestRedisCacheDelete(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var out string
	assert.Error(t, c.GetJSON(ctx, "k", &out))
}

func TestDecisionCacheRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	dc := NewDecisionCache(c, time.Minute)
	ctx := context.Background()

	outcome := &triage.DecisionOutcome{
		FinalDecision: policy.DecisionAllow,
		PolicyReason:  "policy-band",
	}
	require.NoError(t, dc.Put(ctx, "https://example.com", 0.05, outcome))

	got, ok := dc.Get(ctx, "https://example.com", 0.05)
	require.True(t, ok)
	assert.Equal(t, outcome.FinalDecision, got.FinalDecision)
	assert.Equal(t, outcome.PolicyReason, got.PolicyReason)
}

func TestDecisionCacheKeyedByProbability(t *testing.T) {
	c, _ := testCache(t)
	dc := NewDecisionCache(c, time.Minute)
	ctx := context.Background()

	outcome := &triage.DecisionOutcome{FinalDecision: policy.DecisionAllow, PolicyReason: "policy-band"}
	require.NoError(t, dc.Put(ctx, "https://example.com", 0.05, outcome))

	_, ok := dc.Get(ctx, "https://example.com", 0.06)
	assert.False(t, ok)
	_, ok = dc.Get(ctx, "https://other.example.com", 0.05)
	assert.False(t, ok)
}

func TestDecisionCacheRejectsCorruptDecision(t *testing.T) {
	c, _ := testCache(t)
	dc := NewDecisionCache(c, time.Minute)
	ctx := context.Background()

	outcome := &triage.DecisionOutcome{
		FinalDecision: policy.Decision("MANGLED"),
		PolicyReason:  "policy-band",
	}
	require.NoError(t, dc.Put(ctx, "https://example.com", 0.05, outcome))

	_, ok := dc.Get(ctx, "https://example.com", 0.05)
	assert.False(t, ok)
}

func TestDecisionCacheExpiry(t *testing.T) {
	c, mr := testCache(t)
	dc := NewDecisionCache(c, time.Minute)
	ctx := context.Background()

	outcome := &triage.DecisionOutcome{FinalDecision: policy.DecisionBlock, PolicyReason: "policy-band"}
	require.NoError(t, dc.Put(ctx, "https://example.com", 0.99, outcome))

	mr.FastForward(2 * time.Minute)

	_, ok := dc.Get(ctx, "https://example.com", 0.99)
	assert.False(t, ok)
}
