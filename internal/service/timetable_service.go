package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/campuskit/campus-scheduler/internal/dto"
	"github.com/campuskit/campus-scheduler/internal/engine"
	"github.com/campuskit/campus-scheduler/pkg/config"
	appErrors "github.com/campuskit/campus-scheduler/pkg/errors"
	"github.com/campuskit/campus-scheduler/pkg/export"
)

// TimetableService builds class timetable proposals with the Monte Carlo
// restart driver and keeps them addressable for makeup insertion and export.
type TimetableService struct {
	cfg       *config.Config
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	store     *proposalStore
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewTimetableService wires the timetable generator.
func NewTimetableService(cfg *config.Config, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.Proposals.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TimetableService{
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		store:     newProposalStore(ttl),
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Generate runs the restart search and stores the winning proposal.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	engineCfg, err := s.engineConfig(req)
	if err != nil {
		return nil, err
	}

	weights := engineWeights(s.cfg.Weights)
	restarts := s.cfg.Search.Restarts
	if req.Search.Restarts > 0 {
		restarts = req.Search.Restarts
	}
	workers := s.cfg.Search.Workers
	if req.Search.Workers > 0 {
		workers = req.Search.Workers
	}
	seed := resolveSeed(s.cfg.Search, req.Search)

	driver := &engine.MonteCarlo{
		Attempts: restarts,
		Workers:  workers,
		Seed:     seed,
		Score:    func(c *engine.Candidate) float64 { return weights.ScoreTimetable(engineCfg, c) },
	}

	start := time.Now()
	best, stats, err := driver.Run(func(rng *rand.Rand) (*engine.Candidate, error) {
		return engine.BuildTimetable(engineCfg, rng)
	})
	s.metrics.ObserveSearch("timetable", stats.Attempts, stats.Successes, stats.BestFitness, time.Since(start))

	diagnostics := dto.SearchDiagnostics{
		Success:     err == nil,
		Attempts:    stats.Attempts,
		Successes:   stats.Successes,
		SuccessRate: stats.SuccessRate,
		BestFitness: stats.BestFitness,
	}
	if err != nil {
		s.logger.Warn("timetable search exhausted",
			zap.Int("attempts", stats.Attempts),
			zap.Int64("seed", seed))
		return nil, appErrors.Wrap(err, appErrors.ErrInfeasible.Code, appErrors.ErrInfeasible.Status,
			fmt.Sprintf("no feasible timetable in %d attempts", stats.Attempts))
	}

	proposal := timetableProposal{
		ProposalID:  uuid.NewString(),
		Config:      engineCfg,
		Candidate:   best,
		Diagnostics: diagnostics,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	s.logger.Info("timetable generated",
		zap.String("proposal_id", proposal.ProposalID),
		zap.Int("placements", len(best.Placements)),
		zap.Float64("fitness", best.Fitness))

	return &dto.GenerateTimetableResponse{
		ProposalID:  proposal.ProposalID,
		ExpiresAt:   s.store.ExpiresAt(proposal),
		Fitness:     best.Fitness,
		Placements:  placementResponses(engineCfg, best.Placements),
		Diagnostics: diagnostics,
	}, nil
}

// AddMakeup inserts one extra session into a stored proposal, searching the
// existing occupancy rather than a fresh grid. The stored schedule is only
// replaced when the insertion succeeds.
func (s *TimetableService) AddMakeup(ctx context.Context, proposalID string, req dto.MakeupSessionRequest) (*dto.MakeupSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid makeup session payload")
	}
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrProposalExpired, "")
	}
	if !lo.Contains(proposal.Config.Sections, req.Section) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown section %q", req.Section))
	}
	if req.Lab && len(proposal.Config.LabRooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proposal has no lab rooms")
	}

	candidate := proposal.Candidate.Clone()
	rng := newRand(resolveSeed(s.cfg.Search, dto.SearchParams{}))
	placement, err := engine.AddSessionRand(proposal.Config, candidate, req.Section, req.Course, req.Lab, rng)
	if err != nil {
		if errors.Is(err, engine.ErrNoSlotAvailable) {
			return nil, appErrors.Clone(appErrors.ErrNoSlotAvailable, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "makeup insertion failed")
	}

	weights := engineWeights(s.cfg.Weights)
	candidate.Fitness = weights.ScoreTimetable(proposal.Config, candidate)
	proposal.Candidate = candidate
	s.store.Save(proposal)

	s.logger.Info("makeup session added",
		zap.String("proposal_id", proposalID),
		zap.String("section", req.Section),
		zap.String("activity", placement.Name))

	return &dto.MakeupSessionResponse{
		Placement: placementResponse(proposal.Config, placement),
		Fitness:   candidate.Fitness,
	}, nil
}

// Export renders a stored proposal. Supported formats are "csv" (default)
// and "pdf".
func (s *TimetableService) Export(ctx context.Context, proposalID, format string) ([]byte, string, error) {
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrProposalExpired, "")
	}

	dataset := timetableDataset(proposal.Config, proposal.Candidate.Placements)
	switch format {
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv export failed")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Class Timetable")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export failed")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// engineConfig merges the request over the configured grid defaults and
// rejects demand that cannot fit before any search begins.
func (s *TimetableService) engineConfig(req dto.GenerateTimetableRequest) (engine.TimetableConfig, error) {
	grid := s.cfg.Grid
	cfg := engine.TimetableConfig{
		Sections:    req.Sections,
		DayNames:    grid.DayNames,
		HoursPerDay: grid.HoursPerDay,
		BreakHour:   grid.BreakHour,
		TheoryRooms: req.TheoryRooms,
		LabRooms:    req.LabRooms,
		LabDuration: grid.LabDuration,
		Oracle:      engine.Oracle{MaxRun: grid.MaxRun, MaxGap: grid.MaxGap},
	}
	if len(req.Days) > 0 {
		cfg.DayNames = req.Days
	}
	if req.HoursPerDay > 0 {
		cfg.HoursPerDay = req.HoursPerDay
	}
	if req.BreakHour != nil {
		cfg.BreakHour = *req.BreakHour
	}
	if req.LabDuration > 0 {
		cfg.LabDuration = req.LabDuration
	}
	for _, course := range req.Courses {
		cfg.Courses = append(cfg.Courses, engine.CourseLoad{Name: course.Name, Theory: course.Theory, Lab: course.Lab})
	}

	if cfg.BreakHour >= cfg.HoursPerDay {
		return engine.TimetableConfig{}, appErrors.Clone(appErrors.ErrValidation, "break hour outside the day")
	}
	usable := cfg.HoursPerDay
	if cfg.BreakHour >= 0 {
		usable--
	}
	demand := 0
	labs := false
	for _, course := range cfg.Courses {
		if course.Theory <= 0 && course.Lab <= 0 {
			return engine.TimetableConfig{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("course %q requires no sessions", course.Name))
		}
		demand += course.Theory
		if course.Lab > 0 {
			labs = true
			demand += cfg.LabDuration
		}
	}
	if labs {
		if cfg.LabDuration > usable {
			return engine.TimetableConfig{}, appErrors.Clone(appErrors.ErrValidation, "lab duration exceeds the usable day")
		}
		if len(cfg.LabRooms) == 0 {
			return engine.TimetableConfig{}, appErrors.Clone(appErrors.ErrValidation, "lab sessions requested without lab rooms")
		}
	}
	if demand > usable*cfg.Days() {
		return engine.TimetableConfig{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("weekly demand (%d hours) exceeds the grid (%d hours)", demand, usable*cfg.Days()))
	}
	return cfg, nil
}

func placementResponses(cfg engine.TimetableConfig, placements []engine.Placement) []dto.PlacementResponse {
	out := make([]dto.PlacementResponse, 0, len(placements))
	for _, p := range placements {
		out = append(out, placementResponse(cfg, p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		if out[i].DayIndex != out[j].DayIndex {
			return out[i].DayIndex < out[j].DayIndex
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}

func placementResponse(cfg engine.TimetableConfig, p engine.Placement) dto.PlacementResponse {
	return dto.PlacementResponse{
		Section:  p.Consumer,
		Activity: p.Name,
		Kind:     string(p.Kind),
		Day:      cfg.DayNames[p.Day],
		DayIndex: p.Day,
		Hour:     p.Hour,
		Duration: p.Duration,
		Room:     p.Resource,
	}
}

// timetableDataset flattens a schedule into the tabular export contract.
func timetableDataset(cfg engine.TimetableConfig, placements []engine.Placement) export.Dataset {
	rows := placementResponses(cfg, placements)
	dataset := export.Dataset{
		Headers: []string{"Section", "Day", "Hour", "Duration", "Activity", "Kind", "Room"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Section":  row.Section,
			"Day":      row.Day,
			"Hour":     fmt.Sprintf("%d", row.Hour),
			"Duration": fmt.Sprintf("%d", row.Duration),
			"Activity": row.Activity,
			"Kind":     row.Kind,
			"Room":     row.Room,
		})
	}
	return dataset
}
