package judge

import (
	"context"
	"strings"

	domainjudge "github.com/phishguard/phishguard-backend/internal/domain/judge"
)

// suspiciousTokens are URL substrings that commonly appear in credential
// phishing lures.
var suspiciousTokens = []string{"login", "verify", "update", "secure", "account", "paypa1", "signin"}

// Judge verdict bands over the accumulated risk score. These are judge
// bands, independent of the model's policy thresholds.
const (
	leanPhishRisk = 0.60
	leanLegitRisk = 0.20
)

// StubBackend is the deterministic rule-based judge. It is the
// system-of-record fallback and stays available regardless of which
// backend is configured: no I/O, no randomness.
type StubBackend struct{}

// NewStub creates the rule-based judge backend.
func NewStub() *StubBackend {
	return &StubBackend{}
}

// Judge scores the request with fixed per-feature weights, clamps the
// total to [0,1], and maps it to a verdict band.
func (s *StubBackend) Judge(_ context.Context, req domainjudge.Request) (domainjudge.Response, error) {
	f := req.Features
	risk := 0.0
	var reasons []string

	addRisk := func(weight float64, reason string) {
		risk += weight
		reasons = append(reasons, reason)
	}

	if f.IsHTTPS == 0 {
		addRisk(0.15, "HTTP (not HTTPS)")
	}

	switch {
	case f.TLDLegitimateProb < 0.10:
		addRisk(0.30, "very low TLD legitimacy")
	case f.TLDLegitimateProb < 0.30:
		addRisk(0.15, "low TLD legitimacy")
	}

	switch {
	case f.CharContinuationRate > 0.80:
		addRisk(0.25, "high character repetition")
	case f.CharContinuationRate > 0.60:
		addRisk(0.10, "elevated character repetition")
	}

	switch {
	case f.SpacialCharRatioInURL > 0.25:
		addRisk(0.25, "high special character ratio")
	case f.SpacialCharRatioInURL > 0.15:
		addRisk(0.15, "elevated special character ratio")
	}

	switch {
	case f.URLCharProb < 0.30:
		addRisk(0.20, "low URL character probability")
	case f.URLCharProb < 0.50:
		addRisk(0.10, "moderate URL character probability")
	}

	if f.LetterRatioInURL < 0.40 {
		addRisk(0.15, "low letter ratio")
	}

	switch {
	case f.NoOfOtherSpecialCharsInURL > 8:
		addRisk(0.20, "many special characters")
	case f.NoOfOtherSpecialCharsInURL > 5:
		addRisk(0.10, "elevated special characters")
	}

	switch {
	case f.DomainLength > 50:
		addRisk(0.25, "very long domain")
	case f.DomainLength > 30:
		addRisk(0.10, "long domain")
	}

	// Legacy signals carry lower weight than the canonical eight.
	if legacy := f.Legacy; legacy != nil {
		if legacy.URLLen != nil && *legacy.URLLen >= 120 {
			addRisk(0.10, "very long URL")
		}
		if legacy.URLDigitRatio != nil && *legacy.URLDigitRatio >= 0.25 {
			addRisk(0.10, "high digit ratio")
		}
		if legacy.URLSubdomains != nil && *legacy.URLSubdomains >= 4 {
			addRisk(0.10, "many subdomains")
		}
	}

	switch hits := countSuspiciousTokens(req.URL); {
	case hits >= 2:
		addRisk(0.20, "multiple phishing tokens in URL")
	case hits == 1:
		addRisk(0.10, "phishing token in URL")
	}

	risk = clamp01(risk)

	var verdict domainjudge.Verdict
	switch {
	case risk >= leanPhishRisk:
		verdict = domainjudge.VerdictLeanPhish
	case risk <= leanLegitRisk:
		verdict = domainjudge.VerdictLeanLegit
	default:
		verdict = domainjudge.VerdictUncertain
	}

	rationale := "no obvious phishing heuristics triggered"
	if len(reasons) > 0 {
		rationale = strings.Join(reasons, "; ")
	}

	score := risk
	return domainjudge.Response{
		Verdict:   verdict,
		Rationale: rationale,
		Score:     &score,
		Context:   f.ContextMap(),
	}, nil
}

func countSuspiciousTokens(url string) int {
	lower := strings.ToLower(url)
	hits := 0
	for _, tok := range suspiciousTokens {
		if strings.Contains(lower, tok) {
			hits++
		}
	}
	return hits
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
