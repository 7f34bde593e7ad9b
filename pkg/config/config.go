package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	CORS      CORSConfig
	Log       LogConfig
	Search    SearchConfig
	Weights   WeightsConfig
	Proposals ProposalConfig
	Grid      GridConfig
	Exams     ExamConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SearchConfig carries the knobs shared by the restart driver and the
// genetic optimizer.
type SearchConfig struct {
	Restarts         int
	Workers          int
	PopulationSize   int
	Generations      int
	MutationRate     float64
	Elites           int
	TournamentSize   int
	StagnationWindow int
	Seed             int64
}

// WeightsConfig mirrors the engine fitness weights. Kept as a plain struct
// here so the config package stays free of engine imports.
type WeightsConfig struct {
	GapPenalty             float64
	DistributionReward     float64
	ExamBaseline           float64
	SameDayExamPenalty     float64
	FridayAfternoonPenalty float64
	SaturdayPenalty        float64
	FridayAfternoonLabel   string
	AdjacencyClashPenalty  float64
	DuplicatePenalty       float64
	SkippedSeatPenalty     float64
	ClusterReward          float64
	UtilizationReward      float64
	UnderusePenalty        float64
}

// ProposalConfig controls the in-memory proposal store.
type ProposalConfig struct {
	TTL time.Duration
}

// GridConfig holds the class timetabling grid defaults.
type GridConfig struct {
	DayNames    []string
	HoursPerDay int
	BreakHour   int
	LabDuration int
	MaxRun      int
	MaxGap      int
}

// ExamConfig holds the exam window defaults.
type ExamConfig struct {
	SlotLabels       []string
	BlackoutWeekdays []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Search = SearchConfig{
		Restarts:         v.GetInt("SEARCH_RESTARTS"),
		Workers:          v.GetInt("SEARCH_WORKERS"),
		PopulationSize:   v.GetInt("SEARCH_POPULATION_SIZE"),
		Generations:      v.GetInt("SEARCH_GENERATIONS"),
		MutationRate:     v.GetFloat64("SEARCH_MUTATION_RATE"),
		Elites:           v.GetInt("SEARCH_ELITES"),
		TournamentSize:   v.GetInt("SEARCH_TOURNAMENT_SIZE"),
		StagnationWindow: v.GetInt("SEARCH_STAGNATION_WINDOW"),
		Seed:             v.GetInt64("SEARCH_SEED"),
	}

	cfg.Weights = WeightsConfig{
		GapPenalty:             v.GetFloat64("WEIGHT_GAP_PENALTY"),
		DistributionReward:     v.GetFloat64("WEIGHT_DISTRIBUTION_REWARD"),
		ExamBaseline:           v.GetFloat64("WEIGHT_EXAM_BASELINE"),
		SameDayExamPenalty:     v.GetFloat64("WEIGHT_SAME_DAY_EXAM_PENALTY"),
		FridayAfternoonPenalty: v.GetFloat64("WEIGHT_FRIDAY_AFTERNOON_PENALTY"),
		SaturdayPenalty:        v.GetFloat64("WEIGHT_SATURDAY_PENALTY"),
		FridayAfternoonLabel:   v.GetString("WEIGHT_FRIDAY_AFTERNOON_LABEL"),
		AdjacencyClashPenalty:  v.GetFloat64("WEIGHT_ADJACENCY_CLASH_PENALTY"),
		DuplicatePenalty:       v.GetFloat64("WEIGHT_DUPLICATE_PENALTY"),
		SkippedSeatPenalty:     v.GetFloat64("WEIGHT_SKIPPED_SEAT_PENALTY"),
		ClusterReward:          v.GetFloat64("WEIGHT_CLUSTER_REWARD"),
		UtilizationReward:      v.GetFloat64("WEIGHT_UTILIZATION_REWARD"),
		UnderusePenalty:        v.GetFloat64("WEIGHT_UNDERUSE_PENALTY"),
	}

	cfg.Proposals = ProposalConfig{
		TTL: parseDuration(v.GetString("PROPOSAL_TTL"), 30*time.Minute),
	}

	cfg.Grid = GridConfig{
		DayNames:    splitAndTrim(v.GetString("GRID_DAY_NAMES")),
		HoursPerDay: v.GetInt("GRID_HOURS_PER_DAY"),
		BreakHour:   v.GetInt("GRID_BREAK_HOUR"),
		LabDuration: v.GetInt("GRID_LAB_DURATION"),
		MaxRun:      v.GetInt("GRID_MAX_RUN"),
		MaxGap:      v.GetInt("GRID_MAX_GAP"),
	}

	cfg.Exams = ExamConfig{
		SlotLabels:       splitAndTrim(v.GetString("EXAM_SLOT_LABELS")),
		BlackoutWeekdays: splitAndTrim(v.GetString("EXAM_BLACKOUT_WEEKDAYS")),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SEARCH_RESTARTS", 1000)
	v.SetDefault("SEARCH_WORKERS", 4)
	v.SetDefault("SEARCH_POPULATION_SIZE", 100)
	v.SetDefault("SEARCH_GENERATIONS", 500)
	v.SetDefault("SEARCH_MUTATION_RATE", 0.2)
	v.SetDefault("SEARCH_ELITES", 3)
	v.SetDefault("SEARCH_TOURNAMENT_SIZE", 5)
	v.SetDefault("SEARCH_STAGNATION_WINDOW", 150)
	v.SetDefault("SEARCH_SEED", 0)

	v.SetDefault("WEIGHT_GAP_PENALTY", 10.0)
	v.SetDefault("WEIGHT_DISTRIBUTION_REWARD", 10.0)
	v.SetDefault("WEIGHT_EXAM_BASELINE", 1000.0)
	v.SetDefault("WEIGHT_SAME_DAY_EXAM_PENALTY", 300.0)
	v.SetDefault("WEIGHT_FRIDAY_AFTERNOON_PENALTY", 30.0)
	v.SetDefault("WEIGHT_SATURDAY_PENALTY", 50.0)
	v.SetDefault("WEIGHT_FRIDAY_AFTERNOON_LABEL", "2-4")
	v.SetDefault("WEIGHT_ADJACENCY_CLASH_PENALTY", 100.0)
	v.SetDefault("WEIGHT_DUPLICATE_PENALTY", 100.0)
	v.SetDefault("WEIGHT_SKIPPED_SEAT_PENALTY", 50.0)
	v.SetDefault("WEIGHT_CLUSTER_REWARD", 10.0)
	v.SetDefault("WEIGHT_UTILIZATION_REWARD", 20.0)
	v.SetDefault("WEIGHT_UNDERUSE_PENALTY", 30.0)

	v.SetDefault("PROPOSAL_TTL", "30m")

	v.SetDefault("GRID_DAY_NAMES", "Monday,Tuesday,Wednesday,Thursday,Friday")
	v.SetDefault("GRID_HOURS_PER_DAY", 8)
	v.SetDefault("GRID_BREAK_HOUR", 4)
	v.SetDefault("GRID_LAB_DURATION", 3)
	v.SetDefault("GRID_MAX_RUN", 3)
	v.SetDefault("GRID_MAX_GAP", 2)

	v.SetDefault("EXAM_SLOT_LABELS", "10-12,2-4")
	v.SetDefault("EXAM_BLACKOUT_WEEKDAYS", "Saturday,Sunday")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
