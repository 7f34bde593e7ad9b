package service

import (
	"math/rand"
	"time"

	"github.com/campuskit/campus-scheduler/internal/dto"
	"github.com/campuskit/campus-scheduler/internal/engine"
	"github.com/campuskit/campus-scheduler/pkg/config"
)

// engineWeights maps the configured magnitudes onto the engine's fitness
// weights.
func engineWeights(cfg config.WeightsConfig) engine.Weights {
	return engine.Weights{
		GapPenalty:               cfg.GapPenalty,
		DistributionReward:       cfg.DistributionReward,
		ExamBaseline:             cfg.ExamBaseline,
		SameDayExamPenalty:       cfg.SameDayExamPenalty,
		FridayAfternoonPenalty:   cfg.FridayAfternoonPenalty,
		SaturdayPenalty:          cfg.SaturdayPenalty,
		FridayAfternoonLabel:     cfg.FridayAfternoonLabel,
		AdjacencyClashPenalty:    cfg.AdjacencyClashPenalty,
		DuplicateOccupantPenalty: cfg.DuplicatePenalty,
		SkippedSeatPenalty:       cfg.SkippedSeatPenalty,
		ClusterReward:            cfg.ClusterReward,
		UtilizationReward:        cfg.UtilizationReward,
		UnderusePenalty:          cfg.UnderusePenalty,
	}
}

// gaConfig merges per-request overrides over the configured GA defaults.
func gaConfig(defaults config.SearchConfig, params dto.SearchParams) engine.GAConfig {
	cfg := engine.GAConfig{
		PopulationSize:   defaults.PopulationSize,
		Generations:      defaults.Generations,
		MutationRate:     defaults.MutationRate,
		Elites:           defaults.Elites,
		TournamentSize:   defaults.TournamentSize,
		StagnationWindow: defaults.StagnationWindow,
	}
	if params.PopulationSize > 0 {
		cfg.PopulationSize = params.PopulationSize
	}
	if params.Generations > 0 {
		cfg.Generations = params.Generations
	}
	if params.MutationRate > 0 {
		cfg.MutationRate = params.MutationRate
	}
	if params.Elites > 0 {
		cfg.Elites = params.Elites
	}
	if params.TournamentSize > 0 {
		cfg.TournamentSize = params.TournamentSize
	}
	if params.StagnationWindow > 0 {
		cfg.StagnationWindow = params.StagnationWindow
	}
	if params.Selection != "" {
		cfg.Selection = engine.SelectionMethod(params.Selection)
	}
	return cfg
}

// resolveSeed picks the random seed: request override first, then the
// configured fixed seed, then the clock.
func resolveSeed(defaults config.SearchConfig, params dto.SearchParams) int64 {
	if params.Seed != nil {
		return *params.Seed
	}
	if defaults.Seed != 0 {
		return defaults.Seed
	}
	return time.Now().UnixNano()
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
