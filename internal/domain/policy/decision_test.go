package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	for _, valid := range []string{"ALLOW", "REVIEW", "BLOCK"} {
		d, err := ParseDecision(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(d))
	}

	_, err := ParseDecision("allow")
	assert.Error(t, err)
	_, err = ParseDecision("")
	assert.Error(t, err)
}

func TestDecisionIsTerminal(t *testing.T) {
	assert.True(t, DecisionAllow.IsTerminal())
	assert.True(t, DecisionBlock.IsTerminal())
	assert.False(t, DecisionReview.IsTerminal())
}
