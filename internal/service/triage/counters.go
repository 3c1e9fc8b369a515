package triage

import (
	"sync"

	"github.com/phishguard/phishguard-backend/internal/domain/judge"
	"github.com/phishguard/phishguard-backend/internal/domain/policy"
)

// memoryCounters is the in-process Counters store. A single mutex guards
// the three label maps; increments are cheap enough that finer-grained
// locking buys nothing.
type memoryCounters struct {
	mu     sync.Mutex
	policy map[string]uint64
	final  map[string]uint64
	judge  map[string]uint64
}

// NewMemoryCounters creates an empty in-memory counters store.
func NewMemoryCounters() Counters {
	c := &memoryCounters{}
	c.reset()
	return c
}

func (c *memoryCounters) IncPolicy(d policy.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy[string(d)]++
}

func (c *memoryCounters) IncFinal(d policy.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.final[string(d)]++
}

func (c *memoryCounters) IncJudge(v judge.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.judge[string(v)]++
}

func (c *memoryCounters) Snapshot() CountersSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CountersSnapshot{
		PolicyDecisions: copyCounts(c.policy),
		FinalDecisions:  copyCounts(c.final),
		JudgeVerdicts:   copyCounts(c.judge),
	}
}

func (c *memoryCounters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *memoryCounters) reset() {
	c.policy = make(map[string]uint64)
	c.final = make(map[string]uint64)
	c.judge = make(map[string]uint64)
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
