package triage

import (
	"context"

	"github.com/phishguard/phishguard-backend/internal/domain/judge"
	"github.com/phishguard/phishguard-backend/internal/domain/policy"
)

// Service is the escalation orchestrator: threshold policy first, judge
// escalation for the gray zone, counters and best-effort audit on every
// path.
type Service interface {
	// Evaluate resolves a URL and its malicious probability into a final
	// decision. The probability is an opaque model output; Evaluate has no
	// knowledge of how it was produced.
	Evaluate(ctx context.Context, url string, pMalicious float64, extras *Extras) (*DecisionOutcome, error)
	// CountersSnapshot reads the current decision tallies.
	CountersSnapshot() CountersSnapshot
	// ResetCounters zeroes all tallies. Administrative use only.
	ResetCounters()
}

// Counters tallies policy decisions, final decisions, and judge verdicts.
// Implementations must be safe under concurrent increment; only
// per-counter atomicity is required, no cross-counter ordering.
type Counters interface {
	IncPolicy(d policy.Decision)
	IncFinal(d policy.Decision)
	IncJudge(v judge.Verdict)
	Snapshot() CountersSnapshot
	Reset()
}

// AuditSink records decisions and judge rationales. Writes are best-effort:
// a sink error is logged and counted but never reaches the caller or
// alters a decision.
type AuditSink interface {
	LogDecision(ctx context.Context, rec DecisionRecord) error
	LogJudge(ctx context.Context, rec JudgeRecord) error
}
