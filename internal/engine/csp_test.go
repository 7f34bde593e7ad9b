package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allDifferent treats every arc kind as a plain inequality, which is enough
// to exercise the solver machinery on small coloring problems.
func allDifferent(_ ConstraintKind, _ int, a int, _ int, b int) bool {
	return a != b
}

func pairwiseArcs(n int) []Arc {
	var arcs []Arc
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			arcs = append(arcs, Arc{X: i, Y: j, Kind: NoConsumerClash})
		}
	}
	return arcs
}

func TestArcConsistencyPrunesUnsupportedValues(t *testing.T) {
	domains := [][]int{{1, 2, 3}, {1}}
	p := NewCSP(domains, []Arc{{X: 0, Y: 1, Kind: NoConsumerClash}}, allDifferent)

	before := p.DomainSizes()
	require.True(t, p.EnforceArcConsistency())
	after := p.DomainSizes()

	for i := range before {
		assert.LessOrEqual(t, after[i], before[i], "domains only ever shrink")
	}
	assert.Equal(t, []int{2, 1}, after)
	assert.NotContains(t, p.Domains[0], 1)
}

func TestArcConsistencyWipeoutReportsInfeasible(t *testing.T) {
	domains := [][]int{{7}, {7}}
	p := NewCSP(domains, []Arc{{X: 0, Y: 1, Kind: NoConsumerClash}}, allDifferent)

	assert.False(t, p.EnforceArcConsistency())
}

func TestSearchSolvesColoring(t *testing.T) {
	domains := [][]int{{1}, {1, 2, 3}, {1, 2, 3}}
	p := NewCSP(domains, pairwiseArcs(3), allDifferent)

	require.True(t, p.EnforceArcConsistency())
	values, ok := p.Search(nil)
	require.True(t, ok)
	require.Len(t, values, 3)
	assert.Equal(t, 1, values[0])
	assert.NotEqual(t, values[1], values[2])
	assert.NotEqual(t, values[0], values[1])
	assert.NotEqual(t, values[0], values[2])
}

func TestSearchExhaustsInfeasibleTree(t *testing.T) {
	// Three mutually distinct variables over two values: arc consistent but
	// unsatisfiable, so only the backtracking search can reject it.
	domains := [][]int{{1, 2}, {1, 2}, {1, 2}}
	p := NewCSP(domains, pairwiseArcs(3), allDifferent)

	require.True(t, p.EnforceArcConsistency())
	_, ok := p.Search(nil)
	assert.False(t, ok)
}

func TestSearchShuffledOrderStaysConsistent(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		domains := [][]int{{1, 2, 3, 4}, {1, 2, 3, 4}, {1, 2, 3, 4}}
		p := NewCSP(domains, pairwiseArcs(3), allDifferent)
		values, ok := p.Search(rand.New(rand.NewSource(seed)))
		require.True(t, ok)
		assert.NotEqual(t, values[0], values[1])
		assert.NotEqual(t, values[1], values[2])
		assert.NotEqual(t, values[0], values[2])
	}
}

func TestSearchUsesMRVOrdering(t *testing.T) {
	// The singleton domain must be picked first; a naive index order would
	// assign variable 0 before discovering the forced value.
	domains := [][]int{{1, 2}, {2}}
	p := NewCSP(domains, []Arc{{X: 0, Y: 1, Kind: NoConsumerClash}}, allDifferent)

	values, ok := p.Search(nil)
	require.True(t, ok)
	assert.Equal(t, 2, values[1])
	assert.Equal(t, 1, values[0])
}
