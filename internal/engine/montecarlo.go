package engine

import (
	"errors"
	"math/rand"
	"sync"
)

// AttemptFunc runs one independent construction attempt with its own random
// source. Attempts share no mutable state, which is what makes the driver
// safe to fan out over workers.
type AttemptFunc func(rng *rand.Rand) (*Candidate, error)

// SearchStats summarises a finished (or in-flight) restart search.
type SearchStats struct {
	Attempts    int
	Successes   int
	BestFitness float64
	SuccessRate float64
}

// MonteCarlo runs many independent restart attempts, scores each successful
// candidate and keeps the best one. The best-so-far candidate is available
// at any point via Best, so an external wall-clock budget can cut the search
// short and still collect a result.
type MonteCarlo struct {
	Attempts int
	Workers  int
	Seed     int64
	Score    func(*Candidate) float64

	mu        sync.Mutex
	best      *Candidate
	bestIndex int
	stats     SearchStats
}

type attemptResult struct {
	index     int
	candidate *Candidate
}

// Run executes the configured number of attempts. It returns the best
// successful candidate, or ErrInfeasible (with full stats) when every
// attempt failed. Ties on fitness are broken by the earliest attempt index,
// which keeps the outcome deterministic for a fixed seed even when attempts
// run on several workers.
func (m *MonteCarlo) Run(build AttemptFunc) (*Candidate, SearchStats, error) {
	attempts := m.Attempts
	if attempts <= 0 {
		attempts = 1000
	}
	workers := m.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > attempts {
		workers = attempts
	}

	m.mu.Lock()
	m.best = nil
	m.bestIndex = -1
	m.stats = SearchStats{}
	m.mu.Unlock()

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				rng := rand.New(rand.NewSource(m.Seed + int64(i)))
				cand, err := build(rng)
				m.record(i, cand, err)
			}
		}()
	}
	for i := 0; i < attempts; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SuccessRate = float64(m.stats.Successes) / float64(m.stats.Attempts)
	if m.best == nil {
		return nil, m.stats, ErrInfeasible
	}
	return m.best, m.stats, nil
}

// Best returns a copy of the best-scoring candidate seen so far, if any.
func (m *MonteCarlo) Best() (*Candidate, SearchStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.best == nil {
		return nil, m.stats, false
	}
	return m.best.Clone(), m.stats, true
}

func (m *MonteCarlo) record(index int, cand *Candidate, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Attempts++
	if err != nil || cand == nil {
		if err != nil && !errors.Is(err, ErrInfeasible) && !errors.Is(err, ErrNoSlotAvailable) {
			// Construction bugs should not be silently counted as failed
			// restarts.
			panic(err)
		}
		return
	}
	m.stats.Successes++
	cand.Fitness = m.Score(cand)
	better := m.best == nil ||
		cand.Fitness > m.best.Fitness ||
		(cand.Fitness == m.best.Fitness && index < m.bestIndex)
	if better {
		m.best = cand
		m.bestIndex = index
		m.stats.BestFitness = cand.Fitness
	}
}
