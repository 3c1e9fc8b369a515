package features

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTLDTable(t *testing.T) {
	table, err := NewTLDTable(map[string]float64{"com": 0.73})
	require.NoError(t, err)
	assert.Equal(t, 0.73, table.Prob("com"))
	assert.Equal(t, DefaultTLDProb, table.Prob("zz"))
	assert.Equal(t, 1, table.Len())

	_, err = NewTLDTable(map[string]float64{"com": 1.2})
	assert.Error(t, err)
	_, err = NewTLDTable(map[string]float64{"com": -0.1})
	assert.Error(t, err)
}

func TestLoadTLDTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tld_probs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"com": 0.73, "xyz": 0.12}`), 0o644))

	table, err := LoadTLDTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 0.12, table.Prob("xyz"))
}

func TestLoadTLDTableMissingFileIsEmpty(t *testing.T) {
	table, err := LoadTLDTable(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, DefaultTLDProb, table.Prob("com"))
}

func TestLoadTLDTableMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tld_probs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1,2,3]`), 0o644))

	_, err := LoadTLDTable(path)
	assert.Error(t, err)
}
