package engine

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// Weights collects every penalty and reward magnitude used by the fitness
// functions. The source material disagreed on several of these values, so
// all of them are configuration rather than constants.
type Weights struct {
	GapPenalty         float64 `mapstructure:"gap_penalty"`
	DistributionReward float64 `mapstructure:"distribution_reward"`

	ExamBaseline           float64 `mapstructure:"exam_baseline"`
	SameDayExamPenalty     float64 `mapstructure:"same_day_exam_penalty"`
	FridayAfternoonPenalty float64 `mapstructure:"friday_afternoon_penalty"`
	SaturdayPenalty        float64 `mapstructure:"saturday_penalty"`
	FridayAfternoonLabel   string  `mapstructure:"friday_afternoon_label"`

	AdjacencyClashPenalty    float64 `mapstructure:"adjacency_clash_penalty"`
	DuplicateOccupantPenalty float64 `mapstructure:"duplicate_occupant_penalty"`
	SkippedSeatPenalty       float64 `mapstructure:"skipped_seat_penalty"`
	ClusterReward            float64 `mapstructure:"cluster_reward"`
	UtilizationReward        float64 `mapstructure:"utilization_reward"`
	UnderusePenalty          float64 `mapstructure:"underuse_penalty"`
}

// DefaultWeights returns the stock magnitudes.
func DefaultWeights() Weights {
	return Weights{
		GapPenalty:         10,
		DistributionReward: 10,

		ExamBaseline:           1000,
		SameDayExamPenalty:     300,
		FridayAfternoonPenalty: 30,
		SaturdayPenalty:        50,
		FridayAfternoonLabel:   "2-4",

		AdjacencyClashPenalty:    100,
		DuplicateOccupantPenalty: 100,
		SkippedSeatPenalty:       50,
		ClusterReward:            10,
		UtilizationReward:        20,
		UnderusePenalty:          30,
	}
}

// ScoreTimetable evaluates a finished class timetable: idle gaps beyond one
// hour are penalized per excess hour, and evenly spaced days are rewarded
// inversely to the variance of inter-class gaps. Higher is better; the
// baseline is zero. Break and makeup placements do not count as class slots.
func (w Weights) ScoreTimetable(cfg TimetableConfig, cand *Candidate) float64 {
	type sectionDay struct {
		Section string
		Day     int
	}
	hours := make(map[sectionDay][]int)
	for _, p := range cand.Placements {
		if p.Kind == KindBreak || p.Kind == KindMakeup {
			continue
		}
		key := sectionDay{p.Consumer, p.Day}
		for h := p.Hour; h < p.Hour+p.Duration; h++ {
			hours[key] = append(hours[key], h)
		}
	}

	score := 0.0
	for _, slots := range hours {
		sort.Ints(slots)
		if len(slots) <= 1 {
			continue
		}
		gaps := make([]float64, 0, len(slots)-1)
		excess := 0.0
		for i := 0; i < len(slots)-1; i++ {
			gap := slots[i+1] - slots[i]
			gaps = append(gaps, float64(gap))
			if idle := gap - 1; idle > 1 {
				excess += float64(idle - 1)
			}
		}
		score -= w.GapPenalty * excess
		score += w.DistributionReward / (1 + variance(gaps))
	}
	return score
}

// ScoreExamSchedule evaluates an exam candidate against the distribution
// rules: a fixed baseline, a heavy penalty for a batch+department sitting
// more than one exam per day, and soft penalties for occupying a Friday
// afternoon or a Saturday slot.
func (w Weights) ScoreExamSchedule(cand *ExamCandidate) float64 {
	score := w.ExamBaseline

	perConsumerDay := lo.CountValuesBy(cand.Assignments, func(a ExamAssignment) string {
		return a.Subject.ConsumerKey() + "|" + a.Slot.Date.Format("2006-01-02")
	})
	for _, n := range perConsumerDay {
		if n > 1 {
			score -= w.SameDayExamPenalty * float64(n-1)
		}
	}

	for _, a := range cand.Assignments {
		switch a.Slot.Date.Weekday() {
		case time.Friday:
			if a.Slot.Label == w.FridayAfternoonLabel {
				score -= w.FridayAfternoonPenalty
			}
		case time.Saturday:
			score -= w.SaturdayPenalty
		}
	}
	return score
}

// ScoreSeating evaluates a seating arrangement. Adjacent-column subject
// clashes and duplicate occupants carry large penalties so they behave as
// near-hard constraints; homogeneous columns and balanced room utilization
// earn rewards.
func (w Weights) ScoreSeating(input SeatingInput, cand *SeatingCandidate) float64 {
	layout := newRoomLayout(input.Rooms, cand.Assignments)
	penalty, reward := 0.0, 0.0

	seen := make(map[string]int)
	for _, a := range cand.Assignments {
		seen[a.Student.ID]++
	}
	for _, n := range seen {
		if n > 1 {
			penalty += w.DuplicateOccupantPenalty * float64(n-1)
		}
	}

	for _, room := range input.Rooms {
		columns := layout[room.Name]
		for col := 0; col < room.Columns; col++ {
			current := columnSubjects(columns[col])
			if col+1 < room.Columns {
				next := columnSubjects(columns[col+1])
				if overlaps(current, next) {
					penalty += w.AdjacencyClashPenalty
				}
			}
			if hasSkippedSeat(columns[col], room.SeatsPerColumn) {
				penalty += w.SkippedSeatPenalty
			}
			occupants := lo.Filter(columns[col], func(s *Student, _ int) bool { return s != nil })
			if len(occupants) > 0 {
				if len(lo.UniqBy(occupants, func(s *Student) string { return s.Section })) == 1 {
					reward += w.ClusterReward
				}
				if len(lo.UniqBy(occupants, func(s *Student) string { return s.Department })) == 1 {
					reward += w.ClusterReward
				}
			}
		}
	}

	if len(input.Rooms) > 0 {
		average := float64(len(cand.Assignments)) / float64(len(input.Rooms))
		for _, room := range input.Rooms {
			occupied := 0
			for _, col := range layout[room.Name] {
				occupied += lo.CountBy(col, func(s *Student) bool { return s != nil })
			}
			switch {
			case float64(occupied) >= 0.8*average:
				reward += w.UtilizationReward
			case float64(occupied) <= 0.5*average:
				penalty += w.UnderusePenalty
			}
		}
	}

	return reward - penalty
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := lo.Sum(values) / float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

func columnSubjects(col []*Student) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range col {
		if s != nil {
			out[s.Subject] = struct{}{}
		}
	}
	return out
}

func overlaps(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

func hasSkippedSeat(col []*Student, rows int) bool {
	lastOccupied := -1
	for row := 0; row < rows && row < len(col); row++ {
		if col[row] != nil {
			lastOccupied = row
		}
	}
	for row := 0; row < lastOccupied; row++ {
		if col[row] == nil {
			return true
		}
	}
	return false
}
