package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSystem(t *testing.T) {
	sys, err := ParseSystem("SI")
	require.NoError(t, err)
	assert.Equal(t, SI, sys)

	sys, err = ParseSystem(" imperial ")
	require.NoError(t, err)
	assert.Equal(t, Imperial, sys)

	_, err = ParseSystem("cubits")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	t.Run("kilometer to mile", func(t *testing.T) {
		v, unit, err := Convert(1.609344, "kilometer", Imperial)
		require.NoError(t, err)
		assert.Equal(t, "mile", unit)
		assert.InDelta(t, 1.0, v, 1e-12)
	})

	t.Run("already in target system is a no-op", func(t *testing.T) {
		v, unit, err := Convert(42, "kilometer", SI)
		require.NoError(t, err)
		assert.Equal(t, "kilometer", unit)
		assert.Equal(t, 42.0, v)
	})

	t.Run("square kilometers to acres", func(t *testing.T) {
		v, unit, err := Convert(1, "kilometer ** 2", Imperial)
		require.NoError(t, err)
		assert.Equal(t, "acre", unit)
		assert.InDelta(t, 247.105381, v, 1e-5)
	})

	t.Run("percent is invariant", func(t *testing.T) {
		v, unit, err := Convert(55.5, "percent", Imperial)
		require.NoError(t, err)
		assert.Equal(t, "percent", unit)
		assert.Equal(t, 55.5, v)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, _, err := Convert(1, "furlong", SI)
		var unsupported *UnsupportedUnitError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "furlong", unsupported.Unit)
	})
}

func TestKnownAndInvariant(t *testing.T) {
	assert.True(t, Known("meter"))
	assert.True(t, Known("acre"))
	assert.True(t, Known(""))
	assert.True(t, Known("  kilometer  **  2 "), "normalization should collapse spacing")
	assert.False(t, Known("furlong"))

	assert.True(t, Invariant("ratio"))
	assert.True(t, Invariant("count"))
	assert.False(t, Invariant("meter"))
}

func TestForSystem(t *testing.T) {
	unit, err := ForSystem("meter", Imperial)
	require.NoError(t, err)
	assert.Equal(t, "foot", unit)

	unit, err = ForSystem("acre", SI)
	require.NoError(t, err)
	assert.Equal(t, "kilometer ** 2", unit)

	unit, err = ForSystem("percent", Imperial)
	require.NoError(t, err)
	assert.Equal(t, "percent", unit)
}

func TestEveryTokenRoundTrips(t *testing.T) {
	for _, p := range pairs {
		imp, err := ForSystem(p.si, Imperial)
		require.NoError(t, err)
		back, err := ForSystem(imp, SI)
		require.NoError(t, err)
		assert.Equal(t, p.si, back, "token %q must survive a system round trip", p.si)
	}
}
