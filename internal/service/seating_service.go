package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/campus-scheduler/internal/dto"
	"github.com/campuskit/campus-scheduler/internal/engine"
	"github.com/campuskit/campus-scheduler/pkg/config"
	appErrors "github.com/campuskit/campus-scheduler/pkg/errors"
)

// SeatingService arranges students for exam sittings. The default strategy
// proves a conflict-free arrangement exists; the genetic strategy trades that
// guarantee for soft scoring on room usage and cohort clustering.
type SeatingService struct {
	cfg       *config.Config
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewSeatingService wires the seating arranger.
func NewSeatingService(cfg *config.Config, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *SeatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeatingService{cfg: cfg, validator: validate, logger: logger, metrics: metrics}
}

// Generate seats every student according to the requested strategy.
func (s *SeatingService) Generate(ctx context.Context, req dto.GenerateSeatingRequest) (*dto.GenerateSeatingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seating payload")
	}

	input := s.engineInput(req)
	if len(req.Students) > input.Capacity() {
		return nil, appErrors.Clone(appErrors.ErrInfeasible, "more students than seats")
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = "csp"
	}
	seed := resolveSeed(s.cfg.Search, req.Search)
	rng := newRand(seed)

	var (
		best  *engine.SeatingCandidate
		stats engine.GAStats
		err   error
	)
	start := time.Now()
	switch strategy {
	case "ga":
		best, stats, err = engine.OptimizeSeating(input, gaConfig(s.cfg.Search, req.Search), rng)
	default:
		best, err = engine.ArrangeSeating(input, rng)
	}
	if err != nil {
		s.metrics.ObserveSearch("seating", 1, 0, 0, time.Since(start))
		if errors.Is(err, engine.ErrInfeasible) {
			s.logger.Warn("seating arrangement infeasible",
				zap.String("strategy", strategy),
				zap.Int("students", len(input.Students)),
				zap.Int("capacity", input.Capacity()))
			return nil, appErrors.Clone(appErrors.ErrInfeasible, "no valid seating arrangement exists for these rooms")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "seating arrangement failed")
	}
	s.metrics.ObserveSearch("seating", 1, 1, best.Fitness, time.Since(start))

	s.logger.Info("seating arranged",
		zap.String("strategy", strategy),
		zap.Int("students", len(best.Assignments)),
		zap.Float64("fitness", best.Fitness))

	resp := &dto.GenerateSeatingResponse{
		Strategy: strategy,
		Fitness:  best.Fitness,
		Diagnostics: dto.SearchDiagnostics{
			Success:     true,
			Generations: stats.Generations,
			Stagnated:   stats.Stagnated,
			BestFitness: best.Fitness,
		},
	}
	for _, a := range best.Assignments {
		resp.Assignments = append(resp.Assignments, dto.SeatAssignmentResponse{
			Room:       a.Seat.Room,
			Column:     a.Seat.Column,
			Row:        a.Seat.Row,
			StudentID:  a.Student.ID,
			Subject:    a.Student.Subject,
			Section:    a.Student.Section,
			Department: a.Student.Department,
		})
	}
	return resp, nil
}

func (s *SeatingService) engineInput(req dto.GenerateSeatingRequest) engine.SeatingInput {
	input := engine.SeatingInput{Weights: engineWeights(s.cfg.Weights)}
	for _, st := range req.Students {
		input.Students = append(input.Students, engine.Student{
			ID:         st.ID,
			Department: st.Department,
			Section:    st.Section,
			Subject:    st.Subject,
		})
	}
	for _, r := range req.Rooms {
		input.Rooms = append(input.Rooms, engine.Room{
			Name:           r.Name,
			Columns:        r.Columns,
			SeatsPerColumn: r.SeatsPerColumn,
		})
	}
	return input
}
