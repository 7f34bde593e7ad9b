package dto

// SearchParams lets a request override the configured search knobs. Zero
// values fall back to server defaults.
type SearchParams struct {
	Restarts         int     `json:"restarts" validate:"omitempty,min=1,max=100000"`
	Workers          int     `json:"workers" validate:"omitempty,min=1,max=64"`
	PopulationSize   int     `json:"populationSize" validate:"omitempty,min=2,max=2000"`
	Generations      int     `json:"generations" validate:"omitempty,min=1,max=10000"`
	MutationRate     float64 `json:"mutationRate" validate:"omitempty,gt=0,lte=1"`
	Elites           int     `json:"elites" validate:"omitempty,min=1,max=100"`
	TournamentSize   int     `json:"tournamentSize" validate:"omitempty,min=2,max=50"`
	StagnationWindow int     `json:"stagnationWindow" validate:"omitempty,min=1"`
	Selection        string  `json:"selection" validate:"omitempty,oneof=tournament roulette"`
	Seed             *int64  `json:"seed"`
}

// SearchDiagnostics reports how a search went alongside its result.
type SearchDiagnostics struct {
	Success     bool    `json:"success"`
	Attempts    int     `json:"attempts,omitempty"`
	Successes   int     `json:"successes,omitempty"`
	SuccessRate float64 `json:"successRate,omitempty"`
	Generations int     `json:"generations,omitempty"`
	Stagnated   bool    `json:"stagnated,omitempty"`
	BestFitness float64 `json:"bestFitness"`
}
