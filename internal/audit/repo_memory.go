package audit

import (
	"context"
	"sync"
)

// MemoryRepo keeps credit-mutation events in memory, grouped per team.
// It backs tests and local development; production appends go through
// RedisRepo.
type MemoryRepo struct {
	mu     sync.Mutex
	byTeam map[string][]Event
	order  []Event
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byTeam: make(map[string][]Event)}
}

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTeam[e.TeamID] = append(r.byTeam[e.TeamID], e)
	r.order = append(r.order, e)
	return nil
}

// Events returns every appended event in append order, across teams.
func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.order))
	copy(out, r.order)
	return out
}

// Recent returns up to n most recent events for the team, oldest first.
func (r *MemoryRepo) Recent(ctx context.Context, teamID string, n int64) ([]Event, error) {
	if n <= 0 {
		n = defaultRecentEvents
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	evs := r.byTeam[teamID]
	if int64(len(evs)) > n {
		evs = evs[int64(len(evs))-n:]
	}
	out := make([]Event, len(evs))
	copy(out, evs)
	return out, nil
}
