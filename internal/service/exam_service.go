package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/campus-scheduler/internal/dto"
	"github.com/campuskit/campus-scheduler/internal/engine"
	"github.com/campuskit/campus-scheduler/pkg/config"
	appErrors "github.com/campuskit/campus-scheduler/pkg/errors"
)

const dateLayout = "2006-01-02"

// ExamService schedules exams into a calendar window: arc consistency plus
// backtracking for a valid starting point, then a genetic pass to spread
// exams and dodge the penalized sittings.
type ExamService struct {
	cfg       *config.Config
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewExamService wires the exam scheduler.
func NewExamService(cfg *config.Config, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{cfg: cfg, validator: validate, logger: logger, metrics: metrics}
}

// Generate builds and optimizes an exam schedule.
func (s *ExamService) Generate(ctx context.Context, req dto.GenerateExamsRequest) (*dto.GenerateExamsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam generation payload")
	}
	examCfg, err := s.engineConfig(req)
	if err != nil {
		return nil, err
	}

	ga := gaConfig(s.cfg.Search, req.Search)
	seed := resolveSeed(s.cfg.Search, req.Search)

	start := time.Now()
	best, stats, err := engine.OptimizeExamSchedule(examCfg, ga, newRand(seed))
	if err != nil {
		s.metrics.ObserveSearch("exam", 1, 0, 0, time.Since(start))
		if errors.Is(err, engine.ErrInfeasible) {
			s.logger.Warn("exam schedule infeasible",
				zap.Int("subjects", len(examCfg.Subjects)),
				zap.Int("slots", len(examCfg.Window.Slots())))
			return nil, appErrors.Clone(appErrors.ErrInfeasible, "no conflict-free exam schedule exists for this window")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "exam scheduling failed")
	}
	s.metrics.ObserveSearch("exam", 1, 1, best.Fitness, time.Since(start))

	s.logger.Info("exam schedule generated",
		zap.Int("subjects", len(best.Assignments)),
		zap.Int("generations", stats.Generations),
		zap.Float64("fitness", best.Fitness))

	resp := &dto.GenerateExamsResponse{
		Fitness: best.Fitness,
		Diagnostics: dto.SearchDiagnostics{
			Success:     true,
			Generations: stats.Generations,
			Stagnated:   stats.Stagnated,
			BestFitness: stats.BestFitness,
		},
	}
	for _, a := range best.Assignments {
		resp.Assignments = append(resp.Assignments, dto.ExamAssignmentResponse{
			Subject:    a.Subject.Name,
			Batch:      a.Subject.Batch,
			Department: a.Subject.Department,
			Date:       a.Slot.Date.Format(dateLayout),
			Slot:       a.Slot.Label,
		})
	}
	return resp, nil
}

func (s *ExamService) engineConfig(req dto.GenerateExamsRequest) (engine.ExamConfig, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return engine.ExamConfig{}, appErrors.Clone(appErrors.ErrValidation, "invalid start date")
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return engine.ExamConfig{}, appErrors.Clone(appErrors.ErrValidation, "invalid end date")
	}
	if endDate.Before(startDate) {
		return engine.ExamConfig{}, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}

	window := engine.ExamWindow{Start: startDate, End: endDate}
	window.SlotLabels = s.cfg.Exams.SlotLabels
	if len(req.SlotLabels) > 0 {
		window.SlotLabels = req.SlotLabels
	}
	blackoutNames := s.cfg.Exams.BlackoutWeekdays
	if req.BlackoutWeekdays != nil {
		blackoutNames = req.BlackoutWeekdays
	}
	for _, name := range blackoutNames {
		day, err := parseWeekday(name)
		if err != nil {
			return engine.ExamConfig{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		window.BlackoutWeekdays = append(window.BlackoutWeekdays, day)
	}
	if len(window.Slots()) == 0 {
		return engine.ExamConfig{}, appErrors.Clone(appErrors.ErrValidation, "window contains no usable sittings")
	}

	cfg := engine.ExamConfig{Window: window, Weights: engineWeights(s.cfg.Weights)}
	for _, subject := range req.Subjects {
		cfg.Subjects = append(cfg.Subjects, engine.ExamSubject{
			Name:       subject.Name,
			Batch:      subject.Batch,
			Department: subject.Department,
		})
	}
	return cfg, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if day.String() == name {
			return day, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}
