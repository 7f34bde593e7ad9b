package engine

import (
	"math/rand"

	"github.com/samber/lo"
)

// Student is one exam candidate to be seated.
type Student struct {
	ID         string
	Department string
	Section    string
	Subject    string
}

// Room is a classroom laid out as columns of seats.
type Room struct {
	Name           string
	Columns        int
	SeatsPerColumn int
}

func (r Room) Capacity() int { return r.Columns * r.SeatsPerColumn }

// Seat addresses one chair: room name, column index, row index.
type Seat struct {
	Room   string
	Column int
	Row    int
}

// SeatAssignment pins one student to one seat.
type SeatAssignment struct {
	Seat    Seat
	Student Student
}

// SeatingInput is everything the seating arranger needs.
type SeatingInput struct {
	Students []Student
	Rooms    []Room
	Weights  Weights
}

// Capacity is the total number of seats across all rooms.
func (in SeatingInput) Capacity() int {
	return lo.SumBy(in.Rooms, Room.Capacity)
}

// SeatingCandidate is one complete arrangement.
type SeatingCandidate struct {
	Assignments []SeatAssignment
	Fitness     float64
}

// Clone returns a deep copy so population slots never alias.
func (c *SeatingCandidate) Clone() *SeatingCandidate {
	out := &SeatingCandidate{
		Assignments: make([]SeatAssignment, len(c.Assignments)),
		Fitness:     c.Fitness,
	}
	copy(out.Assignments, c.Assignments)
	return out
}

// newRoomLayout rebuilds the per-room column×row occupancy from a flat
// assignment list. Seats outside a room's declared grid are ignored.
func newRoomLayout(rooms []Room, assignments []SeatAssignment) map[string][][]*Student {
	layout := make(map[string][][]*Student, len(rooms))
	byName := make(map[string]Room, len(rooms))
	for _, r := range rooms {
		cols := make([][]*Student, r.Columns)
		for c := range cols {
			cols[c] = make([]*Student, r.SeatsPerColumn)
		}
		layout[r.Name] = cols
		byName[r.Name] = r
	}
	for i := range assignments {
		a := &assignments[i]
		r, ok := byName[a.Seat.Room]
		if !ok || a.Seat.Column >= r.Columns || a.Seat.Row >= r.SeatsPerColumn {
			continue
		}
		layout[a.Seat.Room][a.Seat.Column][a.Seat.Row] = &a.Student
	}
	return layout
}

// enumerateSeats lists every seat in deterministic order: rooms as given,
// columns left to right, rows front to back.
func enumerateSeats(rooms []Room) []Seat {
	var out []Seat
	for _, r := range rooms {
		for col := 0; col < r.Columns; col++ {
			for row := 0; row < r.SeatsPerColumn; row++ {
				out = append(out, Seat{Room: r.Name, Column: col, Row: row})
			}
		}
	}
	return out
}

// newSeatingCSP wires one variable per student over the full seat domain.
// Every student pair shares a seat-distinctness arc; pairs sitting the same
// subject additionally must not land in horizontally adjacent columns of
// the same room. Same-subject students sharing a column is allowed, which
// is what makes subject-homogeneous columns the natural solution.
func newSeatingCSP(input SeatingInput, seats []Seat) *CSP[Seat] {
	domains := make([][]Seat, len(input.Students))
	for i := range domains {
		domains[i] = append([]Seat(nil), seats...)
	}
	var arcs []Arc
	for i := 0; i < len(input.Students); i++ {
		for j := i + 1; j < len(input.Students); j++ {
			arcs = append(arcs, Arc{X: i, Y: j, Kind: NoDuplicateOccupant})
			if input.Students[i].Subject == input.Students[j].Subject {
				arcs = append(arcs, Arc{X: i, Y: j, Kind: NoAdjacentSubjectClash})
			}
		}
	}
	return NewCSP(domains, arcs, seatConsistency)
}

func seatConsistency(kind ConstraintKind, _ int, a Seat, _ int, b Seat) bool {
	switch kind {
	case NoDuplicateOccupant:
		return a != b
	case NoAdjacentSubjectClash:
		if a.Room != b.Room {
			return true
		}
		diff := a.Column - b.Column
		return diff != 1 && diff != -1
	}
	return true
}

// ArrangeSeating produces an exact arrangement via arc consistency plus
// backtracking. A non-nil rng shuffles seat order per student. Returns
// ErrInfeasible when demand exceeds capacity, on a domain wipe-out, or on
// an exhausted search tree.
func ArrangeSeating(input SeatingInput, rng *rand.Rand) (*SeatingCandidate, error) {
	if len(input.Students) == 0 || len(input.Rooms) == 0 {
		return nil, ErrInfeasible
	}
	if len(input.Students) > input.Capacity() {
		return nil, ErrInfeasible
	}
	seats := enumerateSeats(input.Rooms)
	csp := newSeatingCSP(input, seats)
	if !csp.EnforceArcConsistency() {
		return nil, ErrInfeasible
	}
	values, ok := csp.Search(rng)
	if !ok {
		return nil, ErrInfeasible
	}
	cand := &SeatingCandidate{Assignments: make([]SeatAssignment, len(values))}
	for i, seat := range values {
		cand.Assignments[i] = SeatAssignment{Seat: seat, Student: input.Students[i]}
	}
	cand.Fitness = input.Weights.ScoreSeating(input, cand)
	return cand, nil
}

// seatingProblem binds the seating domain to the genetic optimizer. A
// genome deals the student list into the seat list in order, so offspring
// are permutations and a duplicate occupant can never appear; adjacency
// clashes and skipped seats are left to the fitness function.
type seatingProblem struct {
	input        SeatingInput
	seats        []Seat
	mutationRate float64
}

func (p *seatingProblem) deal(order []Student) *SeatingCandidate {
	cand := &SeatingCandidate{Assignments: make([]SeatAssignment, len(order))}
	for i, s := range order {
		cand.Assignments[i] = SeatAssignment{Seat: p.seats[i], Student: s}
	}
	return cand
}

func (p *seatingProblem) Seed(rng *rand.Rand) *SeatingCandidate {
	order := append([]Student(nil), p.input.Students...)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return p.deal(order)
}

func (p *seatingProblem) Fitness(c *SeatingCandidate) float64 {
	c.Fitness = p.input.Weights.ScoreSeating(p.input, c)
	return c.Fitness
}

// Crossover keeps parent A's student order up to a cut point and fills the
// remaining seats with parent B's order, skipping students already placed.
// The fill rule is what keeps every offspring duplicate free.
func (p *seatingProblem) Crossover(rng *rand.Rand, a, b *SeatingCandidate) *SeatingCandidate {
	n := len(a.Assignments)
	cut := rng.Intn(n + 1)
	order := make([]Student, 0, n)
	used := make(map[string]struct{}, n)
	for _, asg := range a.Assignments[:cut] {
		order = append(order, asg.Student)
		used[asg.Student.ID] = struct{}{}
	}
	for _, asg := range b.Assignments {
		if _, ok := used[asg.Student.ID]; ok {
			continue
		}
		order = append(order, asg.Student)
		used[asg.Student.ID] = struct{}{}
	}
	return p.deal(order)
}

// Mutate swaps student pairs, which preserves the permutation property.
func (p *seatingProblem) Mutate(rng *rand.Rand, c *SeatingCandidate) *SeatingCandidate {
	out := c.Clone()
	for i := range out.Assignments {
		if rng.Float64() >= p.mutationRate {
			continue
		}
		j := rng.Intn(len(out.Assignments))
		out.Assignments[i].Student, out.Assignments[j].Student =
			out.Assignments[j].Student, out.Assignments[i].Student
	}
	return out
}

// OptimizeSeating evolves shuffled deals toward an arrangement with no
// adjacency clashes and well packed columns. Unlike ArrangeSeating it never
// reports infeasibility for constraint reasons, only for missing input or
// insufficient capacity; a poor best fitness is the caller's signal.
func OptimizeSeating(input SeatingInput, ga GAConfig, rng *rand.Rand) (*SeatingCandidate, GAStats, error) {
	if len(input.Students) == 0 || len(input.Rooms) == 0 {
		return nil, GAStats{}, ErrInfeasible
	}
	if len(input.Students) > input.Capacity() {
		return nil, GAStats{}, ErrInfeasible
	}
	ga = ga.withDefaults()
	problem := &seatingProblem{
		input:        input,
		seats:        enumerateSeats(input.Rooms),
		mutationRate: ga.MutationRate,
	}
	best, stats := RunGA[*SeatingCandidate](ga, problem, rng)
	best.Fitness = input.Weights.ScoreSeating(input, best)
	return best, stats, nil
}
