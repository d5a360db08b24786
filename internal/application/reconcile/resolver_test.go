package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldName(t *testing.T) {
	cases := map[string]string{
		"  Mango   Pulp ": "mango pulp",
		"MANGO-PULP":      "mango pulp",
		"Pommes Frités":   "pommes frites",
		"Chili (Red)":     "chili red",
		"A/B Mix":         "a b mix",
	}
	for input, want := range cases {
		assert.Equal(t, want, FoldName(input), input)
	}
}

func TestProductResolver(t *testing.T) {
	resolver := NewProductResolver([]string{"Mango Pulp", "Potato Wedges", "Green Peas"})

	t.Run("exact match ignoring case and spacing", func(t *testing.T) {
		name, ok := resolver.Resolve("  mango   PULP ")
		require.True(t, ok)
		assert.Equal(t, "Mango Pulp", name)
	})

	t.Run("raw name containing the canonical name", func(t *testing.T) {
		name, ok := resolver.Resolve("Kesar Mango Pulp")
		require.True(t, ok)
		assert.Equal(t, "Mango Pulp", name)
	})

	t.Run("canonical name containing the raw name", func(t *testing.T) {
		name, ok := resolver.Resolve("wedges")
		require.True(t, ok)
		assert.Equal(t, "Potato Wedges", name)
	})

	t.Run("longest common substring breaks near-miss spellings", func(t *testing.T) {
		name, ok := resolver.Resolve("Green Peaz Frozen")
		require.True(t, ok)
		assert.Equal(t, "Green Peas", name)
	})

	t.Run("short coincidental overlap does not match", func(t *testing.T) {
		_, ok := resolver.Resolve("Oil")
		assert.False(t, ok)
	})

	t.Run("empty input never matches", func(t *testing.T) {
		_, ok := resolver.Resolve("   ")
		assert.False(t, ok)
	})

	t.Run("registration is idempotent and order-stable", func(t *testing.T) {
		resolver.Register("mango pulp") // same folded form
		name, ok := resolver.Resolve("mango pulp")
		require.True(t, ok)
		assert.Equal(t, "Mango Pulp", name)
	})
}

func TestLongestCommonSubstring(t *testing.T) {
	assert.Equal(t, 0, longestCommonSubstring("", "abc"))
	assert.Equal(t, 3, longestCommonSubstring("abcdef", "zabcz"))
	assert.Equal(t, 6, longestCommonSubstring("banana", "banana"))
	assert.Equal(t, 1, longestCommonSubstring("abc", "cba"))
}
