package judge

import "fmt"

// Verdict is the secondary assessment produced for gray-zone URLs.
type Verdict string

const (
	VerdictLeanPhish Verdict = "LEAN_PHISH"
	VerdictLeanLegit Verdict = "LEAN_LEGIT"
	VerdictUncertain Verdict = "UNCERTAIN"
)

// ParseVerdict validates a raw verdict label.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictLeanPhish, VerdictLeanLegit, VerdictUncertain:
		return Verdict(s), nil
	default:
		return "", fmt.Errorf("invalid verdict %q", s)
	}
}

func (v Verdict) String() string {
	return string(v)
}
