package listsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasRoundTrip(t *testing.T) {
	table := NewAliasTable()

	for _, canonical := range []string{
		"3b241101-e2bb-4255-8caf-4136c566a962",
		"list-abc",
		"42",
	} {
		alias := table.Remember(canonical)
		assert.Positive(t, alias)
		assert.Equal(t, canonical, table.CanonicalOf(alias))
	}
}

func TestAliasIsStable(t *testing.T) {
	table := NewAliasTable()

	first := table.Remember("3b241101-e2bb-4255-8caf-4136c566a962")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, table.Remember("3b241101-e2bb-4255-8caf-4136c566a962"))
	}
	assert.Equal(t, 1, table.Len())
}

func TestAliasNumericPassThrough(t *testing.T) {
	table := NewAliasTable()

	assert.Equal(t, int64(1234), table.Remember("1234"))
	assert.Equal(t, "1234", table.CanonicalOf(1234))
}

func TestAliasHashFitsPositive32Bits(t *testing.T) {
	table := NewAliasTable()

	alias := table.Remember("definitely-not-numeric")
	require.Greater(t, alias, int64(0))
	require.LessOrEqual(t, alias, int64(1<<31-1))
}

func TestCanonicalOfUnknownFallsBackToDecimal(t *testing.T) {
	table := NewAliasTable()

	// never remembered: best-effort decimal string, the server answers
	// with a not-found class error
	assert.Equal(t, "987", table.CanonicalOf(987))
}
