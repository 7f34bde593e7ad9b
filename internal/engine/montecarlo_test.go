package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spreadConfig() TimetableConfig {
	return TimetableConfig{
		Sections:    []string{"CSE-A"},
		DayNames:    []string{"Mon", "Tue"},
		HoursPerDay: 4,
		BreakHour:   -1,
		Courses:     []CourseLoad{{Name: "Math", Theory: 1}, {Name: "Chem", Theory: 1}},
		TheoryRooms: []string{"R1"},
		Oracle:      Oracle{},
	}
}

func TestMonteCarloFindsBestCandidate(t *testing.T) {
	cfg := spreadConfig()
	weights := DefaultWeights()
	driver := &MonteCarlo{
		Attempts: 50,
		Seed:     42,
		Score:    func(c *Candidate) float64 { return weights.ScoreTimetable(cfg, c) },
	}

	best, stats, err := driver.Run(func(rng *rand.Rand) (*Candidate, error) {
		return BuildTimetable(cfg, rng)
	})
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Attempts)
	assert.Equal(t, 50, stats.Successes)
	assert.Equal(t, 1.0, stats.SuccessRate)
	assert.Equal(t, best.Fitness, stats.BestFitness)
	assert.True(t, VerifyTimetable(cfg, best))
}

func TestMonteCarloBestFitnessMonotoneInAttempts(t *testing.T) {
	cfg := spreadConfig()
	weights := DefaultWeights()
	build := func(rng *rand.Rand) (*Candidate, error) { return BuildTimetable(cfg, rng) }
	score := func(c *Candidate) float64 { return weights.ScoreTimetable(cfg, c) }

	prev := 0.0
	first := true
	for _, attempts := range []int{1, 5, 20, 60} {
		driver := &MonteCarlo{Attempts: attempts, Seed: 7, Score: score}
		_, stats, err := driver.Run(build)
		require.NoError(t, err)
		if !first {
			assert.GreaterOrEqual(t, stats.BestFitness, prev,
				"best fitness must not regress as the attempt prefix grows")
		}
		prev = stats.BestFitness
		first = false
	}
}

func TestMonteCarloDeterministicAcrossWorkers(t *testing.T) {
	cfg := spreadConfig()
	weights := DefaultWeights()
	build := func(rng *rand.Rand) (*Candidate, error) { return BuildTimetable(cfg, rng) }
	score := func(c *Candidate) float64 { return weights.ScoreTimetable(cfg, c) }

	serial := &MonteCarlo{Attempts: 30, Workers: 1, Seed: 3, Score: score}
	parallel := &MonteCarlo{Attempts: 30, Workers: 4, Seed: 3, Score: score}

	bestSerial, _, err := serial.Run(build)
	require.NoError(t, err)
	bestParallel, _, err := parallel.Run(build)
	require.NoError(t, err)

	assert.Equal(t, bestSerial.Fitness, bestParallel.Fitness)
	assert.ElementsMatch(t, bestSerial.Placements, bestParallel.Placements)
}

func TestMonteCarloOversubscribedReportsZeroSuccesses(t *testing.T) {
	// Two sections demand four room-hours from a two-hour, one-room window:
	// every permutation exceeds supply, so every attempt must fail.
	cfg := TimetableConfig{
		Sections:    []string{"CSE-A", "CSE-B"},
		DayNames:    []string{"Mon"},
		HoursPerDay: 2,
		BreakHour:   -1,
		Courses:     []CourseLoad{{Name: "Math", Theory: 2}},
		TheoryRooms: []string{"R1"},
		Oracle:      Oracle{},
	}
	driver := &MonteCarlo{Attempts: 200, Workers: 4, Seed: 11, Score: func(*Candidate) float64 { return 0 }}

	best, stats, err := driver.Run(func(rng *rand.Rand) (*Candidate, error) {
		return BuildTimetable(cfg, rng)
	})
	assert.ErrorIs(t, err, ErrInfeasible)
	assert.Nil(t, best)
	assert.Equal(t, 200, stats.Attempts)
	assert.Equal(t, 0, stats.Successes)
	assert.Equal(t, 0.0, stats.SuccessRate)
}

func TestMonteCarloBestSoFarAccessible(t *testing.T) {
	cfg := spreadConfig()
	weights := DefaultWeights()
	driver := &MonteCarlo{
		Attempts: 10,
		Seed:     5,
		Score:    func(c *Candidate) float64 { return weights.ScoreTimetable(cfg, c) },
	}

	_, _, ok := driver.Best()
	assert.False(t, ok, "no best before any attempt ran")

	best, stats, err := driver.Run(func(rng *rand.Rand) (*Candidate, error) {
		return BuildTimetable(cfg, rng)
	})
	require.NoError(t, err)

	snapshot, snapStats, ok := driver.Best()
	require.True(t, ok)
	assert.Equal(t, best.Fitness, snapshot.Fitness)
	assert.Equal(t, stats.Successes, snapStats.Successes)

	// The snapshot is a copy; mutating it must not reach the driver.
	snapshot.Placements[0].Hour = 99
	again, _, _ := driver.Best()
	assert.NotEqual(t, 99, again.Placements[0].Hour)
}
