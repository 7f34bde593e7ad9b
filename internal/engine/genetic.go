package engine

import (
	"math/rand"
	"sort"
)

// SelectionMethod picks how GA parents are chosen.
type SelectionMethod string

const (
	SelectTournament SelectionMethod = "tournament"
	SelectRoulette   SelectionMethod = "roulette"
)

// GAConfig tunes the population search. Zero values fall back to defaults.
type GAConfig struct {
	PopulationSize   int
	Generations      int
	MutationRate     float64
	Elites           int
	TournamentSize   int
	StagnationWindow int
	Selection        SelectionMethod
}

func (c GAConfig) withDefaults() GAConfig {
	if c.PopulationSize <= 0 {
		c.PopulationSize = 100
	}
	if c.Generations <= 0 {
		c.Generations = 500
	}
	if c.MutationRate <= 0 {
		c.MutationRate = 0.2
	}
	if c.Elites <= 0 {
		c.Elites = 3
	}
	if c.Elites > c.PopulationSize {
		c.Elites = c.PopulationSize
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = 5
	}
	if c.StagnationWindow <= 0 {
		c.StagnationWindow = 150
	}
	if c.Selection == "" {
		c.Selection = SelectTournament
	}
	return c
}

// GAProblem supplies the problem-specific genetic operators. Every returned
// genome must be exclusively owned by its receiver: Seed and Crossover build
// fresh individuals, Mutate must never modify its argument in place.
type GAProblem[C any] interface {
	Seed(rng *rand.Rand) C
	Fitness(c C) float64
	Crossover(rng *rand.Rand, a, b C) C
	Mutate(rng *rand.Rand, c C) C
}

// GAStats reports how the population search went.
type GAStats struct {
	Generations int
	BestFitness float64
	Stagnated   bool
}

type gaIndividual[C any] struct {
	genome  C
	fitness float64
}

// RunGA evolves a population and returns the best individual observed across
// all generations, not merely the final one, so an early stagnation stop
// never loses the peak.
func RunGA[C any](cfg GAConfig, problem GAProblem[C], rng *rand.Rand) (C, GAStats) {
	cfg = cfg.withDefaults()

	population := make([]gaIndividual[C], cfg.PopulationSize)
	for i := range population {
		genome := problem.Seed(rng)
		population[i] = gaIndividual[C]{genome: genome, fitness: problem.Fitness(genome)}
	}

	var best gaIndividual[C]
	haveBest := false
	sinceImprovement := 0
	stats := GAStats{}

	for gen := 0; gen < cfg.Generations; gen++ {
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		if !haveBest || population[0].fitness > best.fitness {
			best = population[0]
			haveBest = true
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}
		stats.Generations = gen + 1
		stats.BestFitness = best.fitness

		if sinceImprovement > cfg.StagnationWindow {
			stats.Stagnated = true
			break
		}

		next := make([]gaIndividual[C], 0, cfg.PopulationSize)
		next = append(next, population[:cfg.Elites]...)
		for len(next) < cfg.PopulationSize {
			a := selectParent(cfg, population, rng)
			b := selectParent(cfg, population, rng)
			child := problem.Mutate(rng, problem.Crossover(rng, a.genome, b.genome))
			next = append(next, gaIndividual[C]{genome: child, fitness: problem.Fitness(child)})
		}
		population = next
	}

	return best.genome, stats
}

func selectParent[C any](cfg GAConfig, population []gaIndividual[C], rng *rand.Rand) gaIndividual[C] {
	if cfg.Selection == SelectRoulette {
		return rouletteSelect(population, rng)
	}
	return tournamentSelect(population, cfg.TournamentSize, rng)
}

// tournamentSelect returns the fittest of k uniformly sampled individuals.
func tournamentSelect[C any](population []gaIndividual[C], k int, rng *rand.Rand) gaIndividual[C] {
	best := population[rng.Intn(len(population))]
	for i := 1; i < k; i++ {
		challenger := population[rng.Intn(len(population))]
		if challenger.fitness > best.fitness {
			best = challenger
		}
	}
	return best
}

// rouletteSelect draws an individual with probability proportional to its
// fitness shifted into positive territory.
func rouletteSelect[C any](population []gaIndividual[C], rng *rand.Rand) gaIndividual[C] {
	minFitness := population[0].fitness
	for _, ind := range population {
		if ind.fitness < minFitness {
			minFitness = ind.fitness
		}
	}
	total := 0.0
	for _, ind := range population {
		total += ind.fitness - minFitness
	}
	if total <= 0 {
		return population[rng.Intn(len(population))]
	}
	target := rng.Float64() * total
	cumulative := 0.0
	for _, ind := range population {
		cumulative += ind.fitness - minFitness
		if target <= cumulative {
			return ind
		}
	}
	return population[len(population)-1]
}
