package reporting

import (
	"context"
	"time"

	"salescoach-platform/internal/calllog"
)

// SnapshotRepo serves reporting reads from the call-log view snapshot,
// so a summary request never triggers extra upstream traffic beyond the
// snapshot's own first load.
type SnapshotRepo struct {
	logs *calllog.Service
}

func NewSnapshotRepo(logs *calllog.Service) *SnapshotRepo {
	return &SnapshotRepo{logs: logs}
}

func (r *SnapshotRepo) ListRecords(ctx context.Context, teamID, memberID string, from, to time.Time) ([]calllog.Record, error) {
	records, err := r.logs.Records(ctx, teamID, memberID)
	if err != nil {
		return nil, err
	}
	if from.IsZero() && to.IsZero() {
		return records, nil
	}
	out := make([]calllog.Record, 0, len(records))
	for _, rec := range records {
		if rec.Date.IsZero() {
			continue
		}
		if rec.Date.Before(from) || !rec.Date.Before(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
