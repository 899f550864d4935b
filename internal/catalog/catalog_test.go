package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_StatesSortedByName(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	states := c.States()
	require.NotEmpty(t, states)
	assert.Len(t, states, 27)
	for i := 1; i < len(states); i++ {
		assert.LessOrEqual(t, states[i-1].Name, states[i].Name)
	}
	assert.Equal(t, "Acre", states[0].Name)
	assert.Equal(t, "AC", states[0].Code)
}

func TestCities_KnownState(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	cities := c.Cities("SP")
	require.NotEmpty(t, cities)
	for i := 1; i < len(cities); i++ {
		assert.LessOrEqual(t, cities[i-1], cities[i])
	}

	// Lookup is case and whitespace tolerant.
	assert.Equal(t, cities, c.Cities("  sp "))
}

func TestCities_UnknownStateIsEmpty(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Empty(t, c.Cities("XX"))
}

func TestHasState(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.True(t, c.HasState("SP"))
	assert.True(t, c.HasState("rj"))
	assert.False(t, c.HasState("XX"))
	assert.False(t, c.HasState(""))
}

func TestHasCity(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.True(t, c.HasCity("SP", "Campinas"))
	assert.True(t, c.HasCity("sp", "campinas"))
	assert.False(t, c.HasCity("SP", "Rio Branco"))
	assert.False(t, c.HasCity("XX", "Campinas"))
}
