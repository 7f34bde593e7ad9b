package engine

import (
	"fmt"
	"math/rand"

	"github.com/samber/lo"
)

// CourseLoad describes the weekly demand of one course: a number of single
// theory hours and, when Lab is positive, one contiguous lab block.
type CourseLoad struct {
	Name   string
	Theory int
	Lab    int
}

// TimetableConfig is the class timetabling input contract: sections share a
// days x hours grid with a fixed break hour and draw on disjoint theory and
// lab room pools.
type TimetableConfig struct {
	Sections    []string
	DayNames    []string
	HoursPerDay int
	BreakHour   int
	Courses     []CourseLoad
	TheoryRooms []string
	LabRooms    []string
	LabDuration int
	Oracle      Oracle
}

// Days reports the grid width in days.
func (c TimetableConfig) Days() int { return len(c.DayNames) }

// Rooms returns the combined resource pool.
func (c TimetableConfig) Rooms() []string {
	return append(append(make([]string, 0, len(c.TheoryRooms)+len(c.LabRooms)), c.TheoryRooms...), c.LabRooms...)
}

// NewTimetableGrid builds an empty grid sized for the configuration.
func NewTimetableGrid(c TimetableConfig) *Grid {
	return NewGrid(c.Sections, c.Rooms(), c.Days(), c.HoursPerDay, c.BreakHour)
}

// BuildTimetable runs one randomized greedy construction attempt. Lab blocks
// are placed before theory hours because contiguous ranges are harder to fit
// into a partially filled grid. Any unplaceable session fails the whole
// attempt; retrying with a fresh grid is the Monte Carlo driver's job.
func BuildTimetable(cfg TimetableConfig, rng *rand.Rand) (*Candidate, error) {
	g := NewTimetableGrid(cfg)

	for _, course := range cfg.Courses {
		if course.Lab <= 0 {
			continue
		}
		for _, section := range cfg.Sections {
			if _, err := placeSession(g, cfg, section, course.Name, KindLab, rng); err != nil {
				return nil, fmt.Errorf("%w: lab %s for %s", ErrInfeasible, course.Name, section)
			}
		}
	}

	for _, course := range cfg.Courses {
		for i := 0; i < course.Theory; i++ {
			for _, section := range cfg.Sections {
				if _, err := placeSession(g, cfg, section, course.Name, KindTheory, rng); err != nil {
					return nil, fmt.Errorf("%w: theory %s for %s", ErrInfeasible, course.Name, section)
				}
			}
		}
	}

	return &Candidate{Placements: g.Placements()}, nil
}

// AddSession appends one extra session (a makeup class or lab) to an
// already-finished schedule, searching against the existing occupancy rather
// than a fresh grid. On failure the candidate is left unchanged.
func AddSession(cfg TimetableConfig, cand *Candidate, section, course string, lab bool) (Placement, error) {
	return addSessionRand(cfg, cand, section, course, lab, nil)
}

// AddSessionRand is AddSession with an explicit random source.
func AddSessionRand(cfg TimetableConfig, cand *Candidate, section, course string, lab bool, rng *rand.Rand) (Placement, error) {
	return addSessionRand(cfg, cand, section, course, lab, rng)
}

func addSessionRand(cfg TimetableConfig, cand *Candidate, section, course string, lab bool, rng *rand.Rand) (Placement, error) {
	g, err := replay(cfg, cand)
	if err != nil {
		return Placement{}, err
	}
	kind := KindMakeup
	name := course + " Makeup"
	duration := 1
	rooms := cfg.TheoryRooms
	if lab {
		name = course + " Makeup Lab"
		duration = cfg.LabDuration
		rooms = cfg.LabRooms
	}
	p, err := findAndPlace(g, cfg, Activity{Consumer: section, Name: name, Kind: kind, Duration: duration}, rooms, rng)
	if err != nil {
		return Placement{}, err
	}
	cand.Placements = append(cand.Placements, p)
	return p, nil
}

// placeSession books one session of the given kind for the section.
func placeSession(g *Grid, cfg TimetableConfig, section, course string, kind Kind, rng *rand.Rand) (Placement, error) {
	name := course
	duration := 1
	rooms := cfg.TheoryRooms
	if kind == KindLab {
		name = course + " Lab"
		duration = cfg.LabDuration
		rooms = cfg.LabRooms
	}
	return findAndPlace(g, cfg, Activity{Consumer: section, Name: name, Kind: kind, Duration: duration}, rooms, rng)
}

// findAndPlace scans independently shuffled day, hour and room orders and
// commits the first triple that passes the oracle. Independent shuffles keep
// repeated runs from piling onto low-index slots.
func findAndPlace(g *Grid, cfg TimetableConfig, act Activity, rooms []string, rng *rand.Rand) (Placement, error) {
	days := perm(rng, g.Days())
	hours := perm(rng, g.HoursPerDay()-act.Duration+1)
	if act.Duration > 1 {
		hours = shuffled(rng, blockStarts(g, act.Duration))
	}
	roomOrder := shuffled(rng, rooms)

	for _, day := range days {
		for _, hour := range hours {
			if !cfg.Oracle.Allows(g, "", day, hour, act) {
				continue
			}
			for _, room := range roomOrder {
				if !g.ResourceFree(room, day, hour, act.Duration) {
					continue
				}
				if err := g.Place(room, day, hour, act); err != nil {
					return Placement{}, err
				}
				return Placement{Activity: act, Day: day, Hour: hour, Resource: room}, nil
			}
		}
	}
	return Placement{}, ErrNoSlotAvailable
}

// replay rebuilds a grid from a finished candidate.
func replay(cfg TimetableConfig, cand *Candidate) (*Grid, error) {
	g := NewTimetableGrid(cfg)
	for _, p := range cand.Placements {
		if err := g.Place(p.Resource, p.Day, p.Hour, p.Activity); err != nil {
			return nil, fmt.Errorf("replaying %s: %w", p, err)
		}
	}
	return g, nil
}

// VerifyTimetable re-checks every hard constraint on a finished candidate:
// one occupant per consumer cell and per room cell, no break usage and
// contiguous in-bounds durations. Replay performs exactly those checks.
func VerifyTimetable(cfg TimetableConfig, cand *Candidate) bool {
	for _, p := range cand.Placements {
		if p.Hour < 0 || p.Hour+p.Duration > cfg.HoursPerDay {
			return false
		}
		if cfg.BreakHour >= p.Hour && cfg.BreakHour < p.Hour+p.Duration {
			return false
		}
	}
	_, err := replay(cfg, cand)
	return err == nil
}

// blockStarts lists the legal start hours for a multi-hour block: the first
// hour of each teaching segment the block fits into. A block anchored to a
// segment start can never straddle the break or strand a short gap between
// itself and the segment edge.
func blockStarts(g *Grid, duration int) []int {
	var starts []int
	if g.BreakHour() < 0 {
		if duration <= g.HoursPerDay() {
			starts = append(starts, 0)
		}
		return starts
	}
	if duration <= g.BreakHour() {
		starts = append(starts, 0)
	}
	if g.BreakHour()+1+duration <= g.HoursPerDay() {
		starts = append(starts, g.BreakHour()+1)
	}
	return starts
}

func perm(rng *rand.Rand, n int) []int {
	if rng == nil {
		return lo.RangeFrom(0, n)
	}
	return rng.Perm(n)
}

func shuffled[T any](rng *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	if rng != nil {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}
