package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/campuskit/campus-scheduler/internal/engine"
	"github.com/campuskit/campus-scheduler/pkg/export"
)

// schedulerctl runs a scheduling job from a JSON file without the HTTP
// server, rendering the result as CSV or PDF. Useful for batch runs and
// for inspecting engine behavior with a fixed seed.

type timetableJob struct {
	Sections    []string    `mapstructure:"sections"`
	Days        []string    `mapstructure:"days"`
	HoursPerDay int         `mapstructure:"hoursPerDay"`
	BreakHour   *int        `mapstructure:"breakHour"`
	Courses     []courseJob `mapstructure:"courses"`
	TheoryRooms []string    `mapstructure:"theoryRooms"`
	LabRooms    []string    `mapstructure:"labRooms"`
	LabDuration int         `mapstructure:"labDuration"`
	Restarts    int         `mapstructure:"restarts"`
	Workers     int         `mapstructure:"workers"`
}

type courseJob struct {
	Name   string `mapstructure:"name"`
	Theory int    `mapstructure:"theoryHours"`
	Lab    int    `mapstructure:"labBlocks"`
}

type examJob struct {
	StartDate        string       `mapstructure:"startDate"`
	EndDate          string       `mapstructure:"endDate"`
	SlotLabels       []string     `mapstructure:"slotLabels"`
	BlackoutWeekdays []string     `mapstructure:"blackoutWeekdays"`
	Subjects         []subjectJob `mapstructure:"subjects"`
}

type subjectJob struct {
	Name       string `mapstructure:"name"`
	Batch      string `mapstructure:"batch"`
	Department string `mapstructure:"department"`
}

type seatingJob struct {
	Strategy string       `mapstructure:"strategy"`
	Students []studentJob `mapstructure:"students"`
	Rooms    []roomJob    `mapstructure:"rooms"`
}

type studentJob struct {
	ID         string `mapstructure:"id"`
	Department string `mapstructure:"department"`
	Section    string `mapstructure:"section"`
	Subject    string `mapstructure:"subject"`
}

type roomJob struct {
	Name           string `mapstructure:"name"`
	Columns        int    `mapstructure:"columns"`
	SeatsPerColumn int    `mapstructure:"seatsPerColumn"`
}

type jobFile struct {
	Task      string                 `mapstructure:"task"`
	Seed      int64                  `mapstructure:"seed"`
	Weights   map[string]interface{} `mapstructure:"weights"`
	Timetable *timetableJob          `mapstructure:"timetable"`
	Exams     *examJob               `mapstructure:"exams"`
	Seating   *seatingJob            `mapstructure:"seating"`
}

// jobWeights layers the job file's weight overrides over the defaults, keyed
// by the snake_case names on engine.Weights.
func jobWeights(raw map[string]interface{}) (engine.Weights, error) {
	weights := engine.DefaultWeights()
	if len(raw) == 0 {
		return weights, nil
	}
	if err := mapstructure.Decode(raw, &weights); err != nil {
		return engine.Weights{}, fmt.Errorf("decode weights: %w", err)
	}
	return weights, nil
}

func main() {
	input := flag.String("input", "", "path to the JSON job file")
	output := flag.String("out", "", "output path (default stdout)")
	format := flag.String("format", "csv", "output format: csv or pdf")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "schedulerctl: -input is required")
		os.Exit(2)
	}
	if err := run(*input, *output, *format); err != nil {
		fmt.Fprintf(os.Stderr, "schedulerctl: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath, format string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read job file: %w", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("parse job file: %w", err)
	}
	var job jobFile
	if err := mapstructure.Decode(generic, &job); err != nil {
		return fmt.Errorf("decode job file: %w", err)
	}

	seed := job.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	weights, err := jobWeights(job.Weights)
	if err != nil {
		return err
	}

	var (
		dataset export.Dataset
		title   string
	)
	switch job.Task {
	case "timetable":
		if job.Timetable == nil {
			return fmt.Errorf("timetable task requires a timetable section")
		}
		dataset, err = runTimetable(job.Timetable, weights, seed)
		title = "Class Timetable"
	case "exams":
		if job.Exams == nil {
			return fmt.Errorf("exams task requires an exams section")
		}
		dataset, err = runExams(job.Exams, weights, seed)
		title = "Exam Schedule"
	case "seating":
		if job.Seating == nil {
			return fmt.Errorf("seating task requires a seating section")
		}
		dataset, err = runSeating(job.Seating, weights, seed)
		title = "Seating Arrangement"
	default:
		return fmt.Errorf("unknown task %q", job.Task)
	}
	if err != nil {
		return err
	}

	var payload []byte
	switch format {
	case "csv":
		payload, err = export.NewCSVExporter().Render(dataset)
	case "pdf":
		payload, err = export.NewPDFExporter().Render(dataset, title)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(outputPath, payload, 0o644)
}

func runTimetable(job *timetableJob, weights engine.Weights, seed int64) (export.Dataset, error) {
	cfg := engine.TimetableConfig{
		Sections:    job.Sections,
		DayNames:    job.Days,
		HoursPerDay: job.HoursPerDay,
		BreakHour:   4,
		TheoryRooms: job.TheoryRooms,
		LabRooms:    job.LabRooms,
		LabDuration: job.LabDuration,
		Oracle:      engine.DefaultOracle(),
	}
	if len(cfg.DayNames) == 0 {
		cfg.DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	}
	if cfg.HoursPerDay == 0 {
		cfg.HoursPerDay = 8
	}
	if job.BreakHour != nil {
		cfg.BreakHour = *job.BreakHour
	}
	if cfg.LabDuration == 0 {
		cfg.LabDuration = 3
	}
	for _, course := range job.Courses {
		cfg.Courses = append(cfg.Courses, engine.CourseLoad{Name: course.Name, Theory: course.Theory, Lab: course.Lab})
	}

	driver := &engine.MonteCarlo{
		Attempts: job.Restarts,
		Workers:  job.Workers,
		Seed:     seed,
		Score:    func(c *engine.Candidate) float64 { return weights.ScoreTimetable(cfg, c) },
	}
	best, stats, err := driver.Run(func(rng *rand.Rand) (*engine.Candidate, error) {
		return engine.BuildTimetable(cfg, rng)
	})
	if err != nil {
		return export.Dataset{}, fmt.Errorf("no feasible timetable in %d attempts", stats.Attempts)
	}

	placements := append([]engine.Placement(nil), best.Placements...)
	sort.Slice(placements, func(i, j int) bool {
		if placements[i].Consumer != placements[j].Consumer {
			return placements[i].Consumer < placements[j].Consumer
		}
		if placements[i].Day != placements[j].Day {
			return placements[i].Day < placements[j].Day
		}
		return placements[i].Hour < placements[j].Hour
	})
	dataset := export.Dataset{Headers: []string{"Section", "Day", "Hour", "Duration", "Activity", "Kind", "Room"}}
	for _, p := range placements {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Section":  p.Consumer,
			"Day":      cfg.DayNames[p.Day],
			"Hour":     fmt.Sprintf("%d", p.Hour),
			"Duration": fmt.Sprintf("%d", p.Duration),
			"Activity": p.Name,
			"Kind":     string(p.Kind),
			"Room":     p.Resource,
		})
	}
	return dataset, nil
}

func runExams(job *examJob, weights engine.Weights, seed int64) (export.Dataset, error) {
	start, err := time.Parse("2006-01-02", job.StartDate)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", job.EndDate)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("invalid end date: %w", err)
	}

	window := engine.DefaultExamWindow(start, end)
	if len(job.SlotLabels) > 0 {
		window.SlotLabels = job.SlotLabels
	}
	if job.BlackoutWeekdays != nil {
		window.BlackoutWeekdays = nil
		for _, name := range job.BlackoutWeekdays {
			day, err := weekdayByName(name)
			if err != nil {
				return export.Dataset{}, err
			}
			window.BlackoutWeekdays = append(window.BlackoutWeekdays, day)
		}
	}

	cfg := engine.ExamConfig{Window: window, Weights: weights}
	for _, subject := range job.Subjects {
		cfg.Subjects = append(cfg.Subjects, engine.ExamSubject{
			Name:       subject.Name,
			Batch:      subject.Batch,
			Department: subject.Department,
		})
	}

	best, _, err := engine.OptimizeExamSchedule(cfg, engine.GAConfig{}, rand.New(rand.NewSource(seed)))
	if err != nil {
		return export.Dataset{}, err
	}

	dataset := export.Dataset{Headers: []string{"Date", "Slot", "Subject", "Batch", "Department"}}
	for _, a := range best.Assignments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":       a.Slot.Date.Format("2006-01-02"),
			"Slot":       a.Slot.Label,
			"Subject":    a.Subject.Name,
			"Batch":      a.Subject.Batch,
			"Department": a.Subject.Department,
		})
	}
	return dataset, nil
}

func runSeating(job *seatingJob, weights engine.Weights, seed int64) (export.Dataset, error) {
	input := engine.SeatingInput{Weights: weights}
	for _, s := range job.Students {
		input.Students = append(input.Students, engine.Student{
			ID:         s.ID,
			Department: s.Department,
			Section:    s.Section,
			Subject:    s.Subject,
		})
	}
	for _, r := range job.Rooms {
		input.Rooms = append(input.Rooms, engine.Room{
			Name:           r.Name,
			Columns:        r.Columns,
			SeatsPerColumn: r.SeatsPerColumn,
		})
	}

	rng := rand.New(rand.NewSource(seed))
	var (
		best *engine.SeatingCandidate
		err  error
	)
	if job.Strategy == "ga" {
		best, _, err = engine.OptimizeSeating(input, engine.GAConfig{}, rng)
	} else {
		best, err = engine.ArrangeSeating(input, rng)
	}
	if err != nil {
		return export.Dataset{}, err
	}

	dataset := export.Dataset{Headers: []string{"Room", "Column", "Row", "Student", "Subject"}}
	for _, a := range best.Assignments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Room":    a.Seat.Room,
			"Column":  fmt.Sprintf("%d", a.Seat.Column),
			"Row":     fmt.Sprintf("%d", a.Seat.Row),
			"Student": a.Student.ID,
			"Subject": a.Student.Subject,
		})
	}
	return dataset, nil
}

func weekdayByName(name string) (time.Weekday, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if day.String() == name {
			return day, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}
