package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"salescoach-platform/internal/calllog"
)

// MemoryRepo is a simple in-memory reporting repository for tests and
// early development. It enforces team isolation on reads.

type MemoryRepo struct {
	mu sync.Mutex

	Records []calllog.Record
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListRecords(ctx context.Context, teamID, memberID string, from, to time.Time) ([]calllog.Record, error) {
	if teamID == "" {
		return nil, errors.New("team_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]calllog.Record, 0)
	for _, rec := range r.Records {
		if rec.TeamID != teamID {
			continue
		}
		if memberID != "" && rec.MemberID != memberID {
			continue
		}
		if !from.IsZero() || !to.IsZero() {
			if rec.Date.IsZero() {
				continue
			}
			if rec.Date.Before(from) || !rec.Date.Before(to) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
