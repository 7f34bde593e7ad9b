package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSubjectClassroom() SeatingInput {
	return SeatingInput{
		Students: []Student{
			{ID: "s1", Department: "CSE", Section: "A", Subject: "Math"},
			{ID: "s2", Department: "CSE", Section: "A", Subject: "Math"},
			{ID: "s3", Department: "CSE", Section: "B", Subject: "Math"},
			{ID: "s4", Department: "ME", Section: "A", Subject: "Physics"},
			{ID: "s5", Department: "ME", Section: "A", Subject: "Physics"},
			{ID: "s6", Department: "ME", Section: "B", Subject: "Physics"},
		},
		Rooms:   []Room{{Name: "C101", Columns: 2, SeatsPerColumn: 3}},
		Weights: DefaultWeights(),
	}
}

func assertDistinctSeats(t *testing.T, cand *SeatingCandidate) {
	t.Helper()
	seen := make(map[Seat]string)
	for _, a := range cand.Assignments {
		prev, dup := seen[a.Seat]
		require.False(t, dup, "seat %v assigned to both %s and %s", a.Seat, prev, a.Student.ID)
		seen[a.Seat] = a.Student.ID
	}
}

func TestArrangeSeatingTwoColumnClassroom(t *testing.T) {
	input := twoSubjectClassroom()

	cand, err := ArrangeSeating(input, nil)
	require.NoError(t, err)
	require.Len(t, cand.Assignments, 6)
	assertDistinctSeats(t, cand)

	// Two subjects, two adjacent columns of three seats: the only legal
	// shape is one subject-homogeneous column each.
	layout := newRoomLayout(input.Rooms, cand.Assignments)
	columns := layout["C101"]
	first := columnSubjects(columns[0])
	second := columnSubjects(columns[1])
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.False(t, overlaps(first, second))
}

func TestArrangeSeatingShuffledStaysValid(t *testing.T) {
	input := twoSubjectClassroom()

	for seed := int64(0); seed < 5; seed++ {
		cand, err := ArrangeSeating(input, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		assertDistinctSeats(t, cand)

		layout := newRoomLayout(input.Rooms, cand.Assignments)
		columns := layout["C101"]
		assert.False(t, overlaps(columnSubjects(columns[0]), columnSubjects(columns[1])))
	}
}

func TestArrangeSeatingOverCapacity(t *testing.T) {
	input := twoSubjectClassroom()
	input.Students = append(input.Students, Student{ID: "s7", Subject: "Math"})

	_, err := ArrangeSeating(input, nil)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestArrangeSeatingAdjacencyInfeasible(t *testing.T) {
	// Four same-subject students cannot fit a two-column room: they would
	// have to occupy both adjacent columns.
	input := SeatingInput{
		Students: []Student{
			{ID: "s1", Subject: "Math"},
			{ID: "s2", Subject: "Math"},
			{ID: "s3", Subject: "Math"},
			{ID: "s4", Subject: "Math"},
		},
		Rooms:   []Room{{Name: "C101", Columns: 2, SeatsPerColumn: 2}},
		Weights: DefaultWeights(),
	}

	_, err := ArrangeSeating(input, nil)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestArrangeSeatingSameSubjectSkipsAColumn(t *testing.T) {
	// With three columns the middle one stays empty for a single subject.
	input := SeatingInput{
		Students: []Student{
			{ID: "s1", Subject: "Math"},
			{ID: "s2", Subject: "Math"},
			{ID: "s3", Subject: "Math"},
			{ID: "s4", Subject: "Math"},
		},
		Rooms:   []Room{{Name: "C101", Columns: 3, SeatsPerColumn: 2}},
		Weights: DefaultWeights(),
	}

	cand, err := ArrangeSeating(input, nil)
	require.NoError(t, err)
	assertDistinctSeats(t, cand)
	for _, a := range cand.Assignments {
		assert.NotEqual(t, 1, a.Seat.Column, "middle column borders both others")
	}
}

func TestSeatingCrossoverIsDuplicateFree(t *testing.T) {
	input := twoSubjectClassroom()
	problem := &seatingProblem{input: input, seats: enumerateSeats(input.Rooms), mutationRate: 0.2}

	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		a := problem.Seed(rng)
		b := problem.Seed(rng)

		child := problem.Crossover(rng, a, b)
		require.Len(t, child.Assignments, len(input.Students))
		seen := make(map[string]struct{})
		for _, asg := range child.Assignments {
			_, dup := seen[asg.Student.ID]
			require.False(t, dup, "student %s dealt twice", asg.Student.ID)
			seen[asg.Student.ID] = struct{}{}
		}
		assertDistinctSeats(t, child)
	}
}

func TestSeatingMutateSwapsPreservePermutation(t *testing.T) {
	input := twoSubjectClassroom()
	problem := &seatingProblem{input: input, seats: enumerateSeats(input.Rooms), mutationRate: 1.0}

	rng := rand.New(rand.NewSource(3))
	base := problem.Seed(rng)
	mutated := problem.Mutate(rng, base)

	require.Len(t, mutated.Assignments, len(base.Assignments))
	seen := make(map[string]struct{})
	for _, asg := range mutated.Assignments {
		_, dup := seen[asg.Student.ID]
		require.False(t, dup)
		seen[asg.Student.ID] = struct{}{}
	}
	assert.Len(t, seen, len(input.Students))
}

func TestOptimizeSeating(t *testing.T) {
	input := twoSubjectClassroom()
	ga := GAConfig{PopulationSize: 30, Generations: 80, Selection: SelectRoulette}

	best, stats, err := OptimizeSeating(input, ga, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, best.Assignments, len(input.Students))
	assertDistinctSeats(t, best)
	assert.Greater(t, stats.Generations, 0)
	assert.Equal(t, best.Fitness, stats.BestFitness)
}

func TestOptimizeSeatingRejectsOverCapacity(t *testing.T) {
	input := twoSubjectClassroom()
	input.Rooms = []Room{{Name: "C101", Columns: 1, SeatsPerColumn: 2}}

	_, _, err := OptimizeSeating(input, GAConfig{}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInfeasible)
}
