package triage

import (
	"time"

	"github.com/phishguard/phishguard-backend/internal/domain/judge"
	"github.com/phishguard/phishguard-backend/internal/domain/policy"
)

// Policy reason tags attached to every outcome.
const (
	ReasonPolicyBand = "policy-band"

	reasonJudgePrefix      = "judge-"
	reasonShortDomainInfix = "short-domain-"
)

// DecisionOutcome is the result of one evaluation. It is constructed once
// per request and immutable afterwards; the audit sink and the HTTP
// serializer are its only consumers.
type DecisionOutcome struct {
	FinalDecision policy.Decision `json:"final_decision"`
	PolicyReason  string          `json:"policy_reason"`
	Judge         *judge.Response `json:"judge,omitempty"`
}

// Extras are optional caller-supplied feature overrides merged into the
// digest before judging. Nil slots leave the extracted value in place.
type Extras struct {
	TLDLegitimateProb          *float64
	NoOfOtherSpecialCharsInURL *int
	SpacialCharRatioInURL      *float64
	CharContinuationRate       *float64
	URLCharProb                *float64
}

// RoutingConfig holds the auxiliary short-domain routing heuristic. The
// predicate only tags the audit reason; it never changes control flow.
// The constants have no documented sensitivity analysis, which is why they
// live in configuration rather than code.
type RoutingConfig struct {
	ShortDomainLength     int
	ShortDomainConfidence float64
}

// DefaultRoutingConfig mirrors the calibration defaults.
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		ShortDomainLength:     10,
		ShortDomainConfidence: 0.5,
	}
}

// CountersSnapshot is a point-in-time read of the decision tallies.
type CountersSnapshot struct {
	PolicyDecisions map[string]uint64 `json:"policy_decisions"`
	FinalDecisions  map[string]uint64 `json:"final_decisions"`
	JudgeVerdicts   map[string]uint64 `json:"judge_verdicts"`
}

// DecisionRecord is the audit shape for one evaluation.
type DecisionRecord struct {
	URL              string            `json:"url"`
	PMalicious       float64           `json:"p_malicious"`
	PolicyThresholds policy.Thresholds `json:"policy_thresholds"`
	PolicyDecision   policy.Decision   `json:"policy_decision"`
	FinalDecision    policy.Decision   `json:"final_decision"`
	CreatedAt        time.Time         `json:"created_at"`
}

// JudgeRecord is the audit shape for one judge invocation.
type JudgeRecord struct {
	URL        string                 `json:"url"`
	Verdict    judge.Verdict          `json:"verdict"`
	Rationale  string                 `json:"rationale"`
	JudgeScore *float64               `json:"judge_score,omitempty"`
	Features   map[string]interface{} `json:"features"`
	CreatedAt  time.Time              `json:"created_at"`
}
