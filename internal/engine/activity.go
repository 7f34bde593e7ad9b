package engine

import (
	"errors"
	"fmt"
)

// Kind classifies a schedulable activity.
type Kind string

const (
	KindTheory Kind = "theory"
	KindLab    Kind = "lab"
	KindExam   Kind = "exam"
	KindMakeup Kind = "makeup"
	KindBreak  Kind = "break"
)

// Activity is one atomic unit waiting for a placement: a named session owned
// by a consumer group, needing Duration contiguous hours.
type Activity struct {
	Consumer string
	Name     string
	Kind     Kind
	Duration int
}

// Placement is an Activity pinned to a concrete (day, start hour, resource).
type Placement struct {
	Activity
	Day      int
	Hour     int
	Resource string
}

// Candidate is a complete schedule produced by one construction attempt,
// scored by a fitness function. It is owned exclusively by the search that
// created it; population operators work on deep copies.
type Candidate struct {
	Placements []Placement
	Fitness    float64
}

// Clone returns a deep copy so population slots never alias.
func (c *Candidate) Clone() *Candidate {
	out := &Candidate{
		Placements: make([]Placement, len(c.Placements)),
		Fitness:    c.Fitness,
	}
	copy(out.Placements, c.Placements)
	return out
}

var (
	// ErrSlotConflict reports a Place call whose precondition did not hold.
	ErrSlotConflict = errors.New("engine: slot range already occupied")
	// ErrNoSlotAvailable reports that a single-instance search found no legal
	// (day, hour, resource) triple.
	ErrNoSlotAvailable = errors.New("engine: no free slot for activity")
	// ErrInfeasible reports that a whole construction attempt (or every
	// restart) failed to place all required activities.
	ErrInfeasible = errors.New("engine: no feasible schedule found")
)

func (p Placement) String() string {
	return fmt.Sprintf("%s/%s d%d h%d %s", p.Consumer, p.Name, p.Day, p.Hour, p.Resource)
}
