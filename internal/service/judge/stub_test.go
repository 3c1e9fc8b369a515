package judge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainjudge "github.com/phishguard/phishguard-backend/internal/domain/judge"
	"github.com/phishguard/phishguard-backend/internal/domain/features"
)

func cleanDigest() features.FeatureDigest {
	return features.FeatureDigest{
		IsHTTPS:                    1,
		TLDLegitimateProb:          0.9,
		CharContinuationRate:       0.1,
		SpacialCharRatioInURL:      0.05,
		URLCharProb:                0.8,
		LetterRatioInURL:           0.7,
		NoOfOtherSpecialCharsInURL: 2,
		DomainLength:               12,
	}
}

func mustRequest(t *testing.T, url string, d features.FeatureDigest) domainjudge.Request {
	t.Helper()
	req, err := domainjudge.NewRequest(url, d)
	require.NoError(t, err)
	return req
}

func TestStubCleanURLIsLeanLegit(t *testing.T) {
	stub := NewStub()

	resp, err := stub.Judge(context.Background(), mustRequest(t, "https://example.org", cleanDigest()))
	require.NoError(t, err)

	assert.Equal(t, domainjudge.VerdictLeanLegit, resp.Verdict)
	require.NotNil(t, resp.Score)
	assert.Equal(t, 0.0, *resp.Score)
	assert.Equal(t, "no obvious phishing heuristics triggered", resp.Rationale)
	require.NoError(t, resp.Validate())
}

func TestStubHighRiskIsLeanPhish(t *testing.T) {
	stub := NewStub()

	d := cleanDigest()
	d.IsHTTPS = 0                // +0.15
	d.TLDLegitimateProb = 0.05   // +0.30
	d.CharContinuationRate = 0.9 // +0.25

	resp, err := stub.Judge(context.Background(), mustRequest(t, "http://bad.example", d))
	require.NoError(t, err)

	assert.Equal(t, domainjudge.VerdictLeanPhish, resp.Verdict)
	require.NotNil(t, resp.Score)
	assert.InDelta(t, 0.70, *resp.Score, 1e-9)
	assert.Contains(t, resp.Rationale, "HTTP (not HTTPS)")
	assert.Contains(t, resp.Rationale, "very low TLD legitimacy")
}

func TestStubMidRiskIsUncertain(t *testing.T) {
	stub := NewStub()

	d := cleanDigest()
	d.IsHTTPS = 0              // +0.15
	d.TLDLegitimateProb = 0.25 // +0.15

	resp, err := stub.Judge(context.Background(), mustRequest(t, "http://example.org", d))
	require.NoError(t, err)

	assert.Equal(t, domainjudge.VerdictUncertain, resp.Verdict)
	assert.InDelta(t, 0.30, *resp.Score, 1e-9)
}

func TestStubWeightTable(t *testing.T) {
	stub := NewStub()

	tests := []struct {
		name   string
		mutate func(*features.FeatureDigest)
		risk   float64
	}{
		{"http", func(d *features.FeatureDigest) { d.IsHTTPS = 0 }, 0.15},
		{"very low tld", func(d *features.FeatureDigest) { d.TLDLegitimateProb = 0.05 }, 0.30},
		{"low tld", func(d *features.FeatureDigest) { d.TLDLegitimateProb = 0.2 }, 0.15},
		{"high continuation", func(d *features.FeatureDigest) { d.CharContinuationRate = 0.85 }, 0.25},
		{"elevated continuation", func(d *features.FeatureDigest) { d.CharContinuationRate = 0.7 }, 0.10},
		{"high special ratio", func(d *features.FeatureDigest) { d.SpacialCharRatioInURL = 0.3 }, 0.25},
		{"elevated special ratio", func(d *features.FeatureDigest) { d.SpacialCharRatioInURL = 0.2 }, 0.15},
		{"low url char prob", func(d *features.FeatureDigest) { d.URLCharProb = 0.1 }, 0.20},
		{"moderate url char prob", func(d *features.FeatureDigest) { d.URLCharProb = 0.4 }, 0.10},
		{"low letter ratio", func(d *features.FeatureDigest) { d.LetterRatioInURL = 0.3 }, 0.15},
		{"many specials", func(d *features.FeatureDigest) { d.NoOfOtherSpecialCharsInURL = 9 }, 0.20},
		{"elevated specials", func(d *features.FeatureDigest) { d.NoOfOtherSpecialCharsInURL = 6 }, 0.10},
		{"very long domain", func(d *features.FeatureDigest) { d.DomainLength = 51 }, 0.25},
		{"long domain", func(d *features.FeatureDigest) { d.DomainLength = 31 }, 0.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := cleanDigest()
			tt.mutate(&d)
			resp, err := stub.Judge(context.Background(), mustRequest(t, "https://example.org", d))
			require.NoError(t, err)
			assert.InDelta(t, tt.risk, *resp.Score, 1e-9)
		})
	}
}

func TestStubLegacySignals(t *testing.T) {
	stub := NewStub()

	urlLen := 150
	digitRatio := 0.3
	subdomains := 5

	d := cleanDigest()
	d.Legacy = &features.LegacyFeatures{
		URLLen:        &urlLen,
		URLDigitRatio: &digitRatio,
		URLSubdomains: &subdomains,
	}

	resp, err := stub.Judge(context.Background(), mustRequest(t, "https://example.org", d))
	require.NoError(t, err)

	assert.InDelta(t, 0.30, *resp.Score, 1e-9)
	assert.Contains(t, resp.Rationale, "very long URL")
	assert.Contains(t, resp.Rationale, "high digit ratio")
	assert.Contains(t, resp.Rationale, "many subdomains")
}

func TestStubSuspiciousTokens(t *testing.T) {
	stub := NewStub()

	one, err := stub.Judge(context.Background(),
		mustRequest(t, "https://login.example.org", cleanDigest()))
	require.NoError(t, err)
	assert.InDelta(t, 0.10, *one.Score, 1e-9)

	two, err := stub.Judge(context.Background(),
		mustRequest(t, "https://login.example.org/verify", cleanDigest()))
	require.NoError(t, err)
	assert.InDelta(t, 0.20, *two.Score, 1e-9)

	// Token matching is case-insensitive.
	upper, err := stub.Judge(context.Background(),
		mustRequest(t, "https://LOGIN.example.org", cleanDigest()))
	require.NoError(t, err)
	assert.InDelta(t, 0.10, *upper.Score, 1e-9)
}

func TestStubRiskClampedToOne(t *testing.T) {
	stub := NewStub()

	urlLen := 200
	digitRatio := 0.5
	subdomains := 6
	d := features.FeatureDigest{
		IsHTTPS:                    0,
		TLDLegitimateProb:          0.01,
		CharContinuationRate:       0.95,
		SpacialCharRatioInURL:      0.4,
		URLCharProb:                0.1,
		LetterRatioInURL:           0.2,
		NoOfOtherSpecialCharsInURL: 12,
		DomainLength:               60,
		Legacy: &features.LegacyFeatures{
			URLLen:        &urlLen,
			URLDigitRatio: &digitRatio,
			URLSubdomains: &subdomains,
		},
	}

	resp, err := stub.Judge(context.Background(),
		mustRequest(t, "http://login-verify-secure.example/update", d))
	require.NoError(t, err)

	assert.Equal(t, domainjudge.VerdictLeanPhish, resp.Verdict)
	assert.Equal(t, 1.0, *resp.Score)
}

func TestStubDeterministic(t *testing.T) {
	stub := NewStub()
	req := mustRequest(t, "https://login.example.org/verify?a=1", cleanDigest())

	first, err := stub.Judge(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := stub.Judge(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first.Verdict, again.Verdict)
		assert.Equal(t, *first.Score, *again.Score)
		assert.Equal(t, first.Rationale, again.Rationale)
	}
}

func TestStubContextEchoesFeatures(t *testing.T) {
	stub := NewStub()

	resp, err := stub.Judge(context.Background(),
		mustRequest(t, "https://example.org", cleanDigest()))
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Context["IsHTTPS"])
	assert.Equal(t, 0.9, resp.Context["TLDLegitimateProb"])
	assert.Equal(t, 12, resp.Context["DomainLength"])
}
