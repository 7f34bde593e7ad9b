package engine

// ConstraintKind tags every binary constraint the solvers understand, so the
// constraint set is enumerable and each predicate testable in isolation.
type ConstraintKind int

const (
	// NoTimeRoomClash forbids two activities sharing a room and a time slot.
	NoTimeRoomClash ConstraintKind = iota
	// NoTimeInstructorClash forbids an instructor teaching twice at one slot.
	NoTimeInstructorClash
	// NoConsumerClash forbids a consumer group occupying two activities at
	// the same slot.
	NoConsumerClash
	// NoDepartmentSlotClash forbids two exams of one department sharing the
	// exact (date, slot-label) pair.
	NoDepartmentSlotClash
	// NoConsumerSameDayClash forbids a batch+department sitting two exams on
	// one calendar day.
	NoConsumerSameDayClash
	// NoAdjacentSubjectClash forbids same-subject students in horizontally
	// adjacent seat columns of one room.
	NoAdjacentSubjectClash
	// NoDuplicateOccupant forbids one student occupying two seats.
	NoDuplicateOccupant
)

var constraintNames = map[ConstraintKind]string{
	NoTimeRoomClash:        "no-time-room-clash",
	NoTimeInstructorClash:  "no-time-instructor-clash",
	NoConsumerClash:        "no-consumer-clash",
	NoDepartmentSlotClash:  "no-department-slot-clash",
	NoConsumerSameDayClash: "no-consumer-same-day-clash",
	NoAdjacentSubjectClash: "no-adjacent-subject-clash",
	NoDuplicateOccupant:    "no-duplicate-occupant",
}

func (k ConstraintKind) String() string {
	if name, ok := constraintNames[k]; ok {
		return name
	}
	return "unknown-constraint"
}

// Oracle bundles the stateless placement predicates. All checks are pure
// reads over a grid snapshot plus a proposed placement; a placement is legal
// iff every applicable predicate holds.
type Oracle struct {
	// MaxRun caps consecutive same-activity hours for one consumer per day.
	MaxRun int
	// MaxGap caps the distance between a new slot and the nearest existing
	// slot of the same activity that day.
	MaxGap int
}

// DefaultOracle carries the course scheduling defaults: at most three
// consecutive hours of one course and topical gaps of at most two hours.
func DefaultOracle() Oracle {
	return Oracle{MaxRun: 3, MaxGap: 2}
}

// Allows reports whether the proposed placement passes every predicate:
// range and resource freedom (which subsume the break rule), the consecutive
// run limit and the gap policy.
func (o Oracle) Allows(g *Grid, resource string, day, start int, act Activity) bool {
	if !g.RangeFree(act.Consumer, day, start, act.Duration) {
		return false
	}
	if resource != "" && !g.ResourceFree(resource, day, start, act.Duration) {
		return false
	}
	if !o.WithinRunLimit(g, day, start, act) {
		return false
	}
	return o.WithinGapPolicy(g, day, start, act)
}

// WithinRunLimit rejects a placement that would stretch the same activity
// past MaxRun consecutive hours for the consumer on that day. The break hour
// terminates a run, so runs never span it.
func (o Oracle) WithinRunLimit(g *Grid, day, start int, act Activity) bool {
	if o.MaxRun <= 0 {
		return true
	}
	same := func(h int) bool {
		if h >= start && h < start+act.Duration {
			return true
		}
		if h < 0 || h >= g.HoursPerDay() || h == g.BreakHour() {
			return false
		}
		p := g.At(act.Consumer, day, h)
		return p != nil && p.Kind != KindBreak && p.Name == act.Name
	}
	lo := start
	for lo > 0 && same(lo-1) {
		lo--
	}
	hi := start + act.Duration - 1
	for hi < g.HoursPerDay()-1 && same(hi+1) {
		hi++
	}
	return hi-lo+1 <= o.MaxRun
}

// WithinGapPolicy requires the proposed start to be within MaxGap hours of
// the nearest existing occurrence of the same activity that day, enforcing
// topical contiguity without full adjacency.
func (o Oracle) WithinGapPolicy(g *Grid, day, start int, act Activity) bool {
	if o.MaxGap <= 0 {
		return true
	}
	minSlot, maxSlot := -1, -1
	for h := 0; h < g.HoursPerDay(); h++ {
		if h >= start && h < start+act.Duration {
			continue
		}
		p := g.At(act.Consumer, day, h)
		if p == nil || p.Name != act.Name || p.Kind == KindBreak {
			continue
		}
		if minSlot < 0 {
			minSlot = h
		}
		maxSlot = h
	}
	if minSlot < 0 {
		return true
	}
	if start < minSlot {
		return minSlot-start <= o.MaxGap
	}
	if start > maxSlot {
		return start-maxSlot <= o.MaxGap
	}
	return true
}
