package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/phishguard-backend/internal/domain/errors"
	"github.com/phishguard/phishguard-backend/internal/domain/features"
)

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("  https://example.com  ", features.NeutralDigest())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", req.URL)

	_, err = NewRequest("", features.NeutralDigest())
	assert.ErrorIs(t, err, errors.ErrEmptyURL)

	_, err = NewRequest("   ", features.NeutralDigest())
	assert.ErrorIs(t, err, errors.ErrEmptyURL)

	bad := features.NeutralDigest()
	bad.TLDLegitimateProb = 1.5
	_, err = NewRequest("https://example.com", bad)
	assert.Error(t, err)
}

func TestResponseValidate(t *testing.T) {
	score := 0.4
	valid := Response{Verdict: VerdictUncertain, Rationale: "no strong signal", Score: &score}
	require.NoError(t, valid.Validate())

	noScore := Response{Verdict: VerdictLeanLegit, Rationale: "clean URL shape"}
	require.NoError(t, noScore.Validate())

	tests := []struct {
		name string
		resp Response
	}{
		{"bad verdict", Response{Verdict: "MAYBE", Rationale: "something"}},
		{"short rationale", Response{Verdict: VerdictUncertain, Rationale: "ok"}},
		{"whitespace rationale", Response{Verdict: VerdictUncertain, Rationale: "   a   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.resp.Validate())
		})
	}

	badScore := 1.2
	resp := Response{Verdict: VerdictLeanPhish, Rationale: "looks bad", Score: &badScore}
	assert.Error(t, resp.Validate())
}

func TestParseVerdict(t *testing.T) {
	for _, valid := range []string{"LEAN_PHISH", "LEAN_LEGIT", "UNCERTAIN"} {
		v, err := ParseVerdict(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(v))
	}

	_, err := ParseVerdict("lean_phish")
	assert.Error(t, err)
}
