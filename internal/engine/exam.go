package engine

import (
	"math/rand"
	"time"
)

// ExamSlot is one examination sitting: a calendar date plus a slot label
// such as "10-12" or "2-4". Dates are normalized to midnight.
type ExamSlot struct {
	Date  time.Time
	Label string
}

func (s ExamSlot) Equal(o ExamSlot) bool {
	return s.Date.Equal(o.Date) && s.Label == o.Label
}

func (s ExamSlot) SameDay(o ExamSlot) bool {
	return s.Date.Equal(o.Date)
}

func (s ExamSlot) String() string {
	return s.Date.Format("2006-01-02") + " " + s.Label
}

// ExamWindow is the calendar span exams may occupy. Blackout weekdays are
// excluded outright when the window is expanded into sittings.
type ExamWindow struct {
	Start            time.Time
	End              time.Time
	SlotLabels       []string
	BlackoutWeekdays []time.Weekday
}

// DefaultExamWindow spans the given dates with two sittings per day and
// weekends blacked out.
func DefaultExamWindow(start, end time.Time) ExamWindow {
	return ExamWindow{
		Start:            start,
		End:              end,
		SlotLabels:       []string{"10-12", "2-4"},
		BlackoutWeekdays: []time.Weekday{time.Saturday, time.Sunday},
	}
}

// Slots enumerates every sitting in the window, in calendar order, with
// blackout weekdays removed. Both endpoints are inclusive.
func (w ExamWindow) Slots() []ExamSlot {
	blackout := make(map[time.Weekday]struct{}, len(w.BlackoutWeekdays))
	for _, d := range w.BlackoutWeekdays {
		blackout[d] = struct{}{}
	}
	var out []ExamSlot
	start := midnight(w.Start)
	end := midnight(w.End)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if _, skip := blackout[d.Weekday()]; skip {
			continue
		}
		for _, label := range w.SlotLabels {
			out = append(out, ExamSlot{Date: d, Label: label})
		}
	}
	return out
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ExamSubject is one exam to be scheduled for a batch+department cohort.
type ExamSubject struct {
	Name       string
	Batch      string
	Department string
}

// ConsumerKey identifies the cohort sitting this exam.
func (s ExamSubject) ConsumerKey() string {
	return s.Batch + "/" + s.Department
}

// ExamAssignment pins one subject to one sitting.
type ExamAssignment struct {
	Subject ExamSubject
	Slot    ExamSlot
}

// ExamCandidate is a complete exam schedule.
type ExamCandidate struct {
	Assignments []ExamAssignment
	Fitness     float64
}

// Clone returns a deep copy so population slots never alias.
func (c *ExamCandidate) Clone() *ExamCandidate {
	out := &ExamCandidate{
		Assignments: make([]ExamAssignment, len(c.Assignments)),
		Fitness:     c.Fitness,
	}
	copy(out.Assignments, c.Assignments)
	return out
}

// ExamConfig holds everything the exam scheduler needs.
type ExamConfig struct {
	Window   ExamWindow
	Subjects []ExamSubject
	Weights  Weights
}

// newExamCSP wires one variable per subject with a fresh copy of the full
// slot domain. Same-department subjects must not share a sitting; subjects
// of the same cohort must not share a calendar day.
func newExamCSP(cfg ExamConfig, slots []ExamSlot) *CSP[ExamSlot] {
	domains := make([][]ExamSlot, len(cfg.Subjects))
	for i := range domains {
		domains[i] = append([]ExamSlot(nil), slots...)
	}
	var arcs []Arc
	for i := 0; i < len(cfg.Subjects); i++ {
		for j := i + 1; j < len(cfg.Subjects); j++ {
			if cfg.Subjects[i].Department == cfg.Subjects[j].Department {
				arcs = append(arcs, Arc{X: i, Y: j, Kind: NoDepartmentSlotClash})
			}
			if cfg.Subjects[i].ConsumerKey() == cfg.Subjects[j].ConsumerKey() {
				arcs = append(arcs, Arc{X: i, Y: j, Kind: NoConsumerSameDayClash})
			}
		}
	}
	return NewCSP(domains, arcs, examConsistency)
}

func examConsistency(kind ConstraintKind, _ int, a ExamSlot, _ int, b ExamSlot) bool {
	switch kind {
	case NoDepartmentSlotClash:
		return !a.Equal(b)
	case NoConsumerSameDayClash:
		return !a.SameDay(b)
	}
	return true
}

// BuildExamSchedule produces an initial schedule via arc consistency plus
// backtracking. A non-nil rng shuffles value order so repeated calls yield
// different valid schedules. Returns ErrInfeasible on a domain wipe-out or
// an exhausted search tree.
func BuildExamSchedule(cfg ExamConfig, rng *rand.Rand) (*ExamCandidate, error) {
	slots := cfg.Window.Slots()
	if len(slots) == 0 || len(cfg.Subjects) == 0 {
		return nil, ErrInfeasible
	}
	csp := newExamCSP(cfg, slots)
	if !csp.EnforceArcConsistency() {
		return nil, ErrInfeasible
	}
	values, ok := csp.Search(rng)
	if !ok {
		return nil, ErrInfeasible
	}
	cand := &ExamCandidate{Assignments: make([]ExamAssignment, len(values))}
	for i, slot := range values {
		cand.Assignments[i] = ExamAssignment{Subject: cfg.Subjects[i], Slot: slot}
	}
	cand.Fitness = cfg.Weights.ScoreExamSchedule(cand)
	return cand, nil
}

// examProblem binds the exam domain to the genetic optimizer. The hard rule
// enforced on every offspring gene is the department slot clash; same-day
// cohort collisions survive as fitness penalties.
type examProblem struct {
	cfg          ExamConfig
	slots        []ExamSlot
	base         *ExamCandidate
	mutationRate float64
}

func (p *examProblem) Seed(rng *rand.Rand) *ExamCandidate {
	cand, err := BuildExamSchedule(p.cfg, rng)
	if err != nil {
		return p.base.Clone()
	}
	return cand
}

func (p *examProblem) Fitness(c *ExamCandidate) float64 {
	c.Fitness = p.cfg.Weights.ScoreExamSchedule(c)
	return c.Fitness
}

// Crossover copies genes up to a cut point from one parent and past it from
// the other, repairing each gene against the genes already committed into
// the offspring: primary parent first, then the other parent, then a fresh
// slot search, then the primary gene retained as a last resort.
func (p *examProblem) Crossover(rng *rand.Rand, a, b *ExamCandidate) *ExamCandidate {
	n := len(a.Assignments)
	child := &ExamCandidate{Assignments: make([]ExamAssignment, 0, n)}
	cut := rng.Intn(n + 1)
	for i := 0; i < n; i++ {
		primary, other := a.Assignments[i], b.Assignments[i]
		if i >= cut {
			primary, other = other, primary
		}
		gene := primary
		switch {
		case p.geneValid(child.Assignments, primary.Subject, primary.Slot):
		case p.geneValid(child.Assignments, other.Subject, other.Slot):
			gene = other
		default:
			if slot, ok := p.freshSlot(rng, child.Assignments, primary.Subject, primary.Slot); ok {
				gene = ExamAssignment{Subject: primary.Subject, Slot: slot}
			}
		}
		child.Assignments = append(child.Assignments, gene)
	}
	return child
}

// Mutate reassigns each gene with the configured probability by searching
// for a different valid sitting; the original gene is kept when no
// alternative exists.
func (p *examProblem) Mutate(rng *rand.Rand, c *ExamCandidate) *ExamCandidate {
	out := c.Clone()
	for i := range out.Assignments {
		if rng.Float64() >= p.mutationRate {
			continue
		}
		current := out.Assignments[i]
		rest := append(append([]ExamAssignment(nil), out.Assignments[:i]...), out.Assignments[i+1:]...)
		if slot, ok := p.freshSlot(rng, rest, current.Subject, current.Slot); ok {
			out.Assignments[i].Slot = slot
		}
	}
	return out
}

func (p *examProblem) geneValid(committed []ExamAssignment, subject ExamSubject, slot ExamSlot) bool {
	for _, a := range committed {
		if a.Subject.Department == subject.Department && a.Slot.Equal(slot) {
			return false
		}
	}
	return true
}

// freshSlot draws a valid sitting for the subject, weighted toward the
// least crowded calendar days so repairs spread exams out rather than
// piling onto early dates. Slots equal to avoid are skipped.
func (p *examProblem) freshSlot(rng *rand.Rand, committed []ExamAssignment, subject ExamSubject, avoid ExamSlot) (ExamSlot, bool) {
	dayLoad := make(map[string]int)
	for _, a := range committed {
		dayLoad[a.Slot.Date.Format("2006-01-02")]++
	}
	var (
		valid   []ExamSlot
		weights []float64
		total   float64
	)
	for _, slot := range p.slots {
		if slot.Equal(avoid) || !p.geneValid(committed, subject, slot) {
			continue
		}
		w := 1.0 / float64(1+dayLoad[slot.Date.Format("2006-01-02")])
		valid = append(valid, slot)
		weights = append(weights, w)
		total += w
	}
	if len(valid) == 0 {
		return ExamSlot{}, false
	}
	target := rng.Float64() * total
	cumulative := 0.0
	for i, slot := range valid {
		cumulative += weights[i]
		if target <= cumulative {
			return slot, true
		}
	}
	return valid[len(valid)-1], true
}

// OptimizeExamSchedule builds an initial schedule with the CSP solver and
// then evolves it. The returned candidate is the best individual observed
// across all generations.
func OptimizeExamSchedule(cfg ExamConfig, ga GAConfig, rng *rand.Rand) (*ExamCandidate, GAStats, error) {
	base, err := BuildExamSchedule(cfg, rng)
	if err != nil {
		return nil, GAStats{}, err
	}
	ga = ga.withDefaults()
	problem := &examProblem{
		cfg:          cfg,
		slots:        cfg.Window.Slots(),
		base:         base,
		mutationRate: ga.MutationRate,
	}
	best, stats := RunGA[*ExamCandidate](ga, problem, rng)
	best.Fitness = cfg.Weights.ScoreExamSchedule(best)
	return best, stats, nil
}
