package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid() *Grid {
	return NewGrid([]string{"CSE-A", "CSE-B"}, []string{"R1", "R2"}, 5, 8, 4)
}

func TestGridBreakHourPreBlocked(t *testing.T) {
	g := newTestGrid()

	for day := 0; day < g.Days(); day++ {
		p := g.At("CSE-A", day, 4)
		require.NotNil(t, p)
		assert.Equal(t, KindBreak, p.Kind)
	}
	assert.False(t, g.RangeFree("CSE-A", 0, 4, 1))
	assert.False(t, g.RangeFree("CSE-A", 0, 3, 2), "range crossing the break must be rejected")
}

func TestGridPlaceAndConflict(t *testing.T) {
	g := newTestGrid()
	act := Activity{Consumer: "CSE-A", Name: "Math", Kind: KindTheory, Duration: 1}

	require.NoError(t, g.Place("R1", 0, 0, act))
	assert.False(t, g.RangeFree("CSE-A", 0, 0, 1))
	assert.False(t, g.ResourceFree("R1", 0, 0, 1))
	assert.True(t, g.ResourceFree("R2", 0, 0, 1))

	err := g.Place("R2", 0, 0, act)
	assert.ErrorIs(t, err, ErrSlotConflict, "consumer cell is already taken")

	other := Activity{Consumer: "CSE-B", Name: "Math", Kind: KindTheory, Duration: 1}
	err = g.Place("R1", 0, 0, other)
	assert.ErrorIs(t, err, ErrSlotConflict, "room is already taken")
	require.NoError(t, g.Place("R2", 0, 0, other))
}

func TestGridRangeFreeOutOfBounds(t *testing.T) {
	g := newTestGrid()

	assert.False(t, g.RangeFree("CSE-A", 0, 6, 3), "range past the last hour")
	assert.False(t, g.RangeFree("CSE-A", 0, -1, 2))
}

func TestGridMultiSlotPlacementIsSingleEntry(t *testing.T) {
	g := newTestGrid()
	lab := Activity{Consumer: "CSE-A", Name: "Physics Lab", Kind: KindLab, Duration: 3}

	require.NoError(t, g.Place("R1", 1, 5, lab))
	for h := 5; h < 8; h++ {
		require.NotNil(t, g.At("CSE-A", 1, h))
	}

	placements := g.Placements()
	require.Len(t, placements, 1)
	assert.Equal(t, 3, placements[0].Duration)
	assert.Equal(t, 5, placements[0].Hour)
}

func TestGridPlacementsExcludeBreaks(t *testing.T) {
	g := newTestGrid()
	assert.Empty(t, g.Placements())
}

func TestGridFailsLoudlyOnContractViolations(t *testing.T) {
	g := newTestGrid()

	assert.Panics(t, func() { g.At("no-such-section", 0, 0) })
	assert.Panics(t, func() { g.At("CSE-A", 5, 0) })
	assert.Panics(t, func() { g.At("CSE-A", 0, 8) })
	assert.Panics(t, func() { g.ResourceFree("no-such-room", 0, 0, 1) })
	assert.Panics(t, func() { g.RangeFree("CSE-A", 0, 0, 0) })
	assert.Panics(t, func() { NewGrid([]string{"a"}, nil, 0, 8, -1) })
	assert.Panics(t, func() { NewGrid([]string{"a"}, nil, 5, 8, 8) })
}

func TestGridWithoutBreak(t *testing.T) {
	g := NewGrid([]string{"A"}, []string{"R1"}, 1, 2, -1)
	assert.True(t, g.RangeFree("A", 0, 0, 2))
}
