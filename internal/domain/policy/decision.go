package policy

import "fmt"

// Decision is the three-way triage band for a URL.
type Decision string

const (
	DecisionAllow  Decision = "ALLOW"
	DecisionReview Decision = "REVIEW"
	DecisionBlock  Decision = "BLOCK"
)

// ParseDecision validates a raw decision label.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionAllow, DecisionReview, DecisionBlock:
		return Decision(s), nil
	default:
		return "", fmt.Errorf("invalid decision %q", s)
	}
}

func (d Decision) String() string {
	return string(d)
}

// IsTerminal reports whether the policy band alone settles the request.
// REVIEW requires escalation to the judge.
func (d Decision) IsTerminal() bool {
	return d != DecisionReview
}
