package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func examFixture() ExamConfig {
	// Monday 2026-03-02 through Sunday 2026-03-08.
	return ExamConfig{
		Window: DefaultExamWindow(date(2026, time.March, 2), date(2026, time.March, 8)),
		Subjects: []ExamSubject{
			{Name: "Algorithms", Batch: "2024", Department: "CSE"},
			{Name: "Databases", Batch: "2024", Department: "CSE"},
			{Name: "Networks", Batch: "2024", Department: "CSE"},
			{Name: "Thermodynamics", Batch: "2024", Department: "ME"},
			{Name: "Fluid Mechanics", Batch: "2024", Department: "ME"},
		},
		Weights: DefaultWeights(),
	}
}

func assertExamHardConstraints(t *testing.T, cand *ExamCandidate) {
	t.Helper()
	for i := 0; i < len(cand.Assignments); i++ {
		for j := i + 1; j < len(cand.Assignments); j++ {
			a, b := cand.Assignments[i], cand.Assignments[j]
			if a.Subject.Department == b.Subject.Department {
				assert.False(t, a.Slot.Equal(b.Slot),
					"%s and %s share sitting %s", a.Subject.Name, b.Subject.Name, a.Slot)
			}
		}
	}
}

func TestExamWindowSlotsSkipBlackoutWeekdays(t *testing.T) {
	w := DefaultExamWindow(date(2026, time.March, 2), date(2026, time.March, 8))
	slots := w.Slots()

	// Five weekdays, two sittings each.
	require.Len(t, slots, 10)
	for _, s := range slots {
		assert.NotEqual(t, time.Saturday, s.Date.Weekday())
		assert.NotEqual(t, time.Sunday, s.Date.Weekday())
	}
	assert.Equal(t, "2026-03-02 10-12", slots[0].String())
	assert.Equal(t, "2026-03-02 2-4", slots[1].String())
}

func TestExamWindowSlotsEmptyWhenReversed(t *testing.T) {
	w := DefaultExamWindow(date(2026, time.March, 8), date(2026, time.March, 2))
	assert.Empty(t, w.Slots())
}

func TestBuildExamScheduleSatisfiesHardConstraints(t *testing.T) {
	cfg := examFixture()

	for seed := int64(0); seed < 10; seed++ {
		cand, err := BuildExamSchedule(cfg, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		require.Len(t, cand.Assignments, len(cfg.Subjects))
		assertExamHardConstraints(t, cand)

		// One sitting per calendar day per cohort.
		seen := make(map[string]struct{})
		for _, a := range cand.Assignments {
			key := a.Subject.ConsumerKey() + "|" + a.Slot.Date.Format("2006-01-02")
			_, dup := seen[key]
			assert.False(t, dup, "cohort %s sits twice on %s", a.Subject.ConsumerKey(), a.Slot.Date)
			seen[key] = struct{}{}
		}
	}
}

func TestBuildExamScheduleInfeasibleWindow(t *testing.T) {
	cfg := ExamConfig{
		// A single day cannot host two exams of one cohort.
		Window: DefaultExamWindow(date(2026, time.March, 2), date(2026, time.March, 2)),
		Subjects: []ExamSubject{
			{Name: "Algorithms", Batch: "2024", Department: "CSE"},
			{Name: "Databases", Batch: "2024", Department: "CSE"},
		},
		Weights: DefaultWeights(),
	}

	_, err := BuildExamSchedule(cfg, nil)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestExamCrossoverRepairsDepartmentClashes(t *testing.T) {
	cfg := examFixture()
	problem := &examProblem{cfg: cfg, slots: cfg.Window.Slots(), mutationRate: 0.2}

	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		a, err := BuildExamSchedule(cfg, rng)
		require.NoError(t, err)
		b, err := BuildExamSchedule(cfg, rng)
		require.NoError(t, err)

		child := problem.Crossover(rng, a, b)
		require.Len(t, child.Assignments, len(cfg.Subjects))
		assertExamHardConstraints(t, child)
		for i, asg := range child.Assignments {
			assert.Equal(t, cfg.Subjects[i], asg.Subject, "gene order must be preserved")
		}
	}
}

func TestExamMutateKeepsHardConstraints(t *testing.T) {
	cfg := examFixture()
	problem := &examProblem{cfg: cfg, slots: cfg.Window.Slots(), mutationRate: 1.0}

	rng := rand.New(rand.NewSource(9))
	base, err := BuildExamSchedule(cfg, rng)
	require.NoError(t, err)

	mutated := problem.Mutate(rng, base)
	assertExamHardConstraints(t, mutated)
	assertExamHardConstraints(t, base)
}

func TestOptimizeExamSchedule(t *testing.T) {
	cfg := examFixture()
	ga := GAConfig{PopulationSize: 20, Generations: 40, Selection: SelectRoulette}

	best, stats, err := OptimizeExamSchedule(cfg, ga, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, best.Assignments, len(cfg.Subjects))
	assertExamHardConstraints(t, best)
	assert.Greater(t, stats.Generations, 0)
	assert.Equal(t, best.Fitness, stats.BestFitness)
}

func TestOptimizeExamScheduleInfeasiblePropagates(t *testing.T) {
	cfg := ExamConfig{Weights: DefaultWeights()}
	_, _, err := OptimizeExamSchedule(cfg, GAConfig{}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInfeasible)
}
