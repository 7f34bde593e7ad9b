package engine

import "math/rand"

// Arc binds an ordered variable pair under one tagged constraint.
type Arc struct {
	X, Y int
	Kind ConstraintKind
}

// ConsistencyFunc evaluates a tagged constraint for concrete values of two
// variables. Implementations dispatch on the kind, keeping the constraint
// set enumerable instead of hiding predicates in per-pair closures.
type ConsistencyFunc[V any] func(kind ConstraintKind, x int, a V, y int, b V) bool

// CSP is a generic binary constraint satisfaction problem: one domain slice
// per variable and a set of tagged arcs. Arcs are mirrored automatically, so
// callers declare each constraint once.
type CSP[V any] struct {
	Domains    [][]V
	Arcs       []Arc
	Consistent ConsistencyFunc[V]

	kinds     map[[2]int][]ConstraintKind
	neighbors map[int][]int
}

// NewCSP wires a problem from domains and arcs.
func NewCSP[V any](domains [][]V, arcs []Arc, consistent ConsistencyFunc[V]) *CSP[V] {
	p := &CSP[V]{Domains: domains, Arcs: arcs, Consistent: consistent}
	p.index()
	return p
}

func (p *CSP[V]) index() {
	p.kinds = make(map[[2]int][]ConstraintKind)
	p.neighbors = make(map[int][]int)
	seen := make(map[[2]int]struct{})
	add := func(x, y int, kind ConstraintKind) {
		key := [2]int{x, y}
		p.kinds[key] = append(p.kinds[key], kind)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			p.neighbors[x] = append(p.neighbors[x], y)
		}
	}
	for _, arc := range p.Arcs {
		add(arc.X, arc.Y, arc.Kind)
		add(arc.Y, arc.X, arc.Kind)
	}
}

func (p *CSP[V]) pairConsistent(x int, a V, y int, b V) bool {
	for _, kind := range p.kinds[[2]int{x, y}] {
		if !p.Consistent(kind, x, a, y, b) {
			return false
		}
	}
	return true
}

// EnforceArcConsistency runs AC-3 over the constraint graph. Domains only
// ever shrink; the return value is false on a domain wipe-out, which makes
// the whole attempt infeasible. A true return guarantees every remaining
// value has support in every constrained neighbor's domain.
func (p *CSP[V]) EnforceArcConsistency() bool {
	queue := make([][2]int, 0, len(p.kinds))
	for pair := range p.kinds {
		queue = append(queue, pair)
	}
	for len(queue) > 0 {
		pair := queue[0]
		queue = queue[1:]
		x, y := pair[0], pair[1]
		if !p.revise(x, y) {
			continue
		}
		if len(p.Domains[x]) == 0 {
			return false
		}
		for _, z := range p.neighbors[x] {
			if z != y {
				queue = append(queue, [2]int{z, x})
			}
		}
	}
	return true
}

// revise drops every value of x that has no supporting value in y's domain.
// Reports whether anything was removed.
func (p *CSP[V]) revise(x, y int) bool {
	kept := p.Domains[x][:0]
	removed := false
	for _, a := range p.Domains[x] {
		supported := false
		for _, b := range p.Domains[y] {
			if p.pairConsistent(x, a, y, b) {
				supported = true
				break
			}
		}
		if supported {
			kept = append(kept, a)
		} else {
			removed = true
		}
	}
	p.Domains[x] = kept
	return removed
}

// Search runs recursive backtracking with minimum-remaining-values variable
// ordering. A non-nil rng shuffles value order per variable so repeated
// restarts explore different branches; nil keeps the declared order. The
// boolean return is false when the search tree is exhausted.
func (p *CSP[V]) Search(rng *rand.Rand) ([]V, bool) {
	assignment := make([]V, len(p.Domains))
	assigned := make([]bool, len(p.Domains))
	if !p.backtrack(assignment, assigned, rng) {
		return nil, false
	}
	return assignment, true
}

func (p *CSP[V]) backtrack(assignment []V, assigned []bool, rng *rand.Rand) bool {
	x := p.selectUnassigned(assigned)
	if x < 0 {
		return true
	}
	order := make([]int, len(p.Domains[x]))
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	for _, idx := range order {
		a := p.Domains[x][idx]
		if !p.consistentWithAssigned(x, a, assignment, assigned) {
			continue
		}
		assignment[x] = a
		assigned[x] = true
		if p.backtrack(assignment, assigned, rng) {
			return true
		}
		assigned[x] = false
	}
	return false
}

// selectUnassigned applies the MRV heuristic: fewest remaining domain values
// first, so dead ends surface early.
func (p *CSP[V]) selectUnassigned(assigned []bool) int {
	best, bestSize := -1, 0
	for x := range p.Domains {
		if assigned[x] {
			continue
		}
		if best < 0 || len(p.Domains[x]) < bestSize {
			best = x
			bestSize = len(p.Domains[x])
		}
	}
	return best
}

// consistentWithAssigned checks the candidate value pairwise against every
// already-assigned variable, not just domain membership.
func (p *CSP[V]) consistentWithAssigned(x int, a V, assignment []V, assigned []bool) bool {
	for _, y := range p.neighbors[x] {
		if assigned[y] && !p.pairConsistent(x, a, y, assignment[y]) {
			return false
		}
	}
	return true
}

// DomainSizes snapshots the current domain cardinalities, mainly for
// diagnostics and pruning assertions.
func (p *CSP[V]) DomainSizes() []int {
	sizes := make([]int, len(p.Domains))
	for i, d := range p.Domains {
		sizes[i] = len(d)
	}
	return sizes
}
