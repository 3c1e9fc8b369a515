package features

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/phishguard/phishguard-backend/internal/domain/errors"
)

// DefaultTLDProb is the prior assigned to TLDs absent from the lookup
// table.
const DefaultTLDProb = 0.5

// TLDTable is a read-only mapping from lowercase TLD to a legitimacy prior
// in [0,1]. It is loaded once at process start and safe for unsynchronized
// concurrent reads.
type TLDTable struct {
	probs map[string]float64
}

// NewTLDTable validates and wraps a prior map.
func NewTLDTable(probs map[string]float64) (*TLDTable, error) {
	for tld, p := range probs {
		if p < 0.0 || p > 1.0 {
			return nil, errors.NewConfigurationError("INVALID_TLD_PROB",
				fmt.Sprintf("prior for TLD %q must be in [0,1], got %v", tld, p))
		}
	}
	return &TLDTable{probs: probs}, nil
}

// EmptyTLDTable returns a table that answers DefaultTLDProb for every TLD.
func EmptyTLDTable() *TLDTable {
	return &TLDTable{probs: map[string]float64{}}
}

// LoadTLDTable reads a JSON object of {tld: prior}. A missing file is not
// fatal: the extractor degrades to the neutral prior for every TLD.
func LoadTLDTable(path string) (*TLDTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return EmptyTLDTable(), nil
		}
		return nil, errors.NewConfigurationError("TLD_TABLE_UNREADABLE",
			fmt.Sprintf("reading TLD table %s", path)).WithCause(err)
	}

	var probs map[string]float64
	if err := json.Unmarshal(raw, &probs); err != nil {
		return nil, errors.NewConfigurationError("TLD_TABLE_MALFORMED",
			fmt.Sprintf("parsing TLD table %s", path)).WithCause(err)
	}
	return NewTLDTable(probs)
}

// Prob returns the legitimacy prior for a lowercase TLD, defaulting to
// DefaultTLDProb for unknown entries.
func (t *TLDTable) Prob(tld string) float64 {
	if p, ok := t.probs[tld]; ok {
		return p
	}
	return DefaultTLDProb
}

// Len reports the number of known TLD priors.
func (t *TLDTable) Len() int {
	return len(t.probs)
}
