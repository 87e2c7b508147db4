package hydro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	h, err := Build([]string{"170401010101", "170401010102", "170401020101"})
	require.NoError(t, err)

	assert.Equal(t, 12, h.LeafLevel())
	assert.Equal(t, []string{"17040101", "17040102"}, h.AtLevel(8))
	assert.Equal(t, []string{"170401"}, h.AtLevel(6))
	assert.Equal(t, []string{"17"}, h.AtLevel(2))
	assert.Equal(t,
		[]string{"170401010101", "170401010102", "170401020101"},
		h.AtLevel(12))
}

func TestBuildRejectsMixedLeafLevels(t *testing.T) {
	_, err := Build([]string{"170401010101", "17040101"})
	assert.Error(t, err)
}

func TestBuildRejectsMalformedLeaf(t *testing.T) {
	_, err := Build([]string{"deadbeef"})
	assert.Error(t, err)

	_, err = Build(nil)
	assert.Error(t, err)
}

func TestContains(t *testing.T) {
	h, err := Build([]string{"170401010101"})
	require.NoError(t, err)

	assert.True(t, h.Contains("17040101"))
	assert.False(t, h.Contains("18010101"))
}
