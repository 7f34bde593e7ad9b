package service

import (
	"sync"
	"time"

	"github.com/campuskit/campus-scheduler/internal/dto"
	"github.com/campuskit/campus-scheduler/internal/engine"
)

// timetableProposal keeps a generated schedule addressable for follow-up
// operations: makeup insertion and export. The engine config is retained so
// the occupancy grid can be replayed against the stored candidate.
type timetableProposal struct {
	ProposalID  string
	Config      engine.TimetableConfig
	Candidate   *engine.Candidate
	Diagnostics dto.SearchDiagnostics
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]timetableProposal),
	}
}

func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *proposalStore) ExpiresAt(proposal timetableProposal) time.Time {
	return proposal.RequestedAt.Add(s.ttl)
}
