package engine

import "fmt"

// Grid models the (day, hour) resource space for one construction attempt:
// an occupancy row per consumer group and a boolean occupancy row per room.
// A Grid is built fresh for every attempt and never shared between attempts.
type Grid struct {
	days        int
	hoursPerDay int
	breakHour   int

	consumers map[string][][]*Placement
	resources map[string][][]bool
}

// NewGrid builds a zeroed grid with the break hour pre-blocked on every
// consumer row. breakHour may be negative to disable the break entirely.
func NewGrid(consumers, resources []string, days, hoursPerDay, breakHour int) *Grid {
	if days <= 0 || hoursPerDay <= 0 {
		panic(fmt.Sprintf("engine: invalid grid dimensions %dx%d", days, hoursPerDay))
	}
	if breakHour >= hoursPerDay {
		panic(fmt.Sprintf("engine: break hour %d outside 0..%d", breakHour, hoursPerDay-1))
	}

	g := &Grid{
		days:        days,
		hoursPerDay: hoursPerDay,
		breakHour:   breakHour,
		consumers:   make(map[string][][]*Placement, len(consumers)),
		resources:   make(map[string][][]bool, len(resources)),
	}
	for _, c := range consumers {
		rows := make([][]*Placement, days)
		for d := range rows {
			rows[d] = make([]*Placement, hoursPerDay)
			if breakHour >= 0 {
				rows[d][breakHour] = &Placement{
					Activity: Activity{Consumer: c, Name: "Break", Kind: KindBreak, Duration: 1},
					Day:      d,
					Hour:     breakHour,
				}
			}
		}
		g.consumers[c] = rows
	}
	for _, r := range resources {
		rows := make([][]bool, days)
		for d := range rows {
			rows[d] = make([]bool, hoursPerDay)
		}
		g.resources[r] = rows
	}
	return g
}

// Days reports the number of schedulable days.
func (g *Grid) Days() int { return g.days }

// HoursPerDay reports the number of hour slots per day.
func (g *Grid) HoursPerDay() int { return g.hoursPerDay }

// BreakHour reports the blocked hour index, or -1 when disabled.
func (g *Grid) BreakHour() int { return g.breakHour }

// At returns the placement occupying the consumer cell, or nil when free.
// Out-of-range indices are a caller bug and panic.
func (g *Grid) At(consumer string, day, hour int) *Placement {
	return g.consumerRow(consumer, day)[g.checkHour(hour)]
}

// RangeFree reports whether every consumer cell in [start, start+duration) is
// free, the range stays inside the day, and the range avoids the break hour.
func (g *Grid) RangeFree(consumer string, day, start, duration int) bool {
	if duration <= 0 {
		panic(fmt.Sprintf("engine: non-positive duration %d", duration))
	}
	if start < 0 || start+duration > g.hoursPerDay {
		return false
	}
	row := g.consumerRow(consumer, day)
	for h := start; h < start+duration; h++ {
		if h == g.breakHour || row[h] != nil {
			return false
		}
	}
	return true
}

// ResourceFree reports whether the resource is unoccupied for the whole range.
func (g *Grid) ResourceFree(resource string, day, start, duration int) bool {
	if start < 0 || start+duration > g.hoursPerDay {
		return false
	}
	row, ok := g.resources[resource]
	if !ok {
		panic(fmt.Sprintf("engine: unknown resource %q", resource))
	}
	g.checkDay(day)
	for h := start; h < start+duration; h++ {
		if row[day][h] {
			return false
		}
	}
	return true
}

// Place marks every cell of the range occupied by the activity and books the
// resource. Returns ErrSlotConflict when the precondition (RangeFree and
// ResourceFree) does not hold; the grid is left untouched in that case.
func (g *Grid) Place(resource string, day, start int, act Activity) error {
	if !g.RangeFree(act.Consumer, day, start, act.Duration) {
		return ErrSlotConflict
	}
	if resource != "" && !g.ResourceFree(resource, day, start, act.Duration) {
		return ErrSlotConflict
	}
	p := &Placement{Activity: act, Day: day, Hour: start, Resource: resource}
	row := g.consumers[act.Consumer]
	for h := start; h < start+act.Duration; h++ {
		row[day][h] = p
		if resource != "" {
			g.resources[resource][day][h] = true
		}
	}
	return nil
}

// Placements collects every distinct non-break placement on the grid.
func (g *Grid) Placements() []Placement {
	seen := make(map[*Placement]struct{})
	var out []Placement
	for _, rows := range g.consumers {
		for _, row := range rows {
			for _, p := range row {
				if p == nil || p.Kind == KindBreak {
					continue
				}
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				out = append(out, *p)
			}
		}
	}
	return out
}

func (g *Grid) consumerRow(consumer string, day int) []*Placement {
	rows, ok := g.consumers[consumer]
	if !ok {
		panic(fmt.Sprintf("engine: unknown consumer %q", consumer))
	}
	g.checkDay(day)
	return rows[day]
}

func (g *Grid) checkDay(day int) {
	if day < 0 || day >= g.days {
		panic(fmt.Sprintf("engine: day %d outside 0..%d", day, g.days-1))
	}
}

func (g *Grid) checkHour(hour int) int {
	if hour < 0 || hour >= g.hoursPerDay {
		panic(fmt.Sprintf("engine: hour %d outside 0..%d", hour, g.hoursPerDay-1))
	}
	return hour
}
