package calllog

import (
	"context"
	"sync"
)

// Fetcher is the slice of the platform API the service needs.
type Fetcher interface {
	List(ctx context.Context, teamID, memberID string) ([]Record, error)
	SaveFeedback(ctx context.Context, memberID, sessionID, feedback string) error
}

// Service serves the call-log review view. It keeps one read-only
// snapshot per (team, member); the snapshot changes only on reload or by
// the optimistic patch applied after a successful feedback save.
type Service struct {
	api Fetcher

	mu        sync.Mutex
	snapshots map[string][]Record
}

func NewService(api Fetcher) *Service {
	return &Service{
		api:       api,
		snapshots: map[string][]Record{},
	}
}

func snapshotKey(teamID, memberID string) string {
	return teamID + "|" + memberID
}

// Load fetches the member's records from the platform API and replaces
// the local snapshot.
func (s *Service) Load(ctx context.Context, teamID, memberID string) ([]Record, error) {
	records, err := s.api.List(ctx, teamID, memberID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshots[snapshotKey(teamID, memberID)] = records
	s.mu.Unlock()

	return records, nil
}

// Records returns the current snapshot, loading it on first use.
func (s *Service) Records(ctx context.Context, teamID, memberID string) ([]Record, error) {
	s.mu.Lock()
	snap, ok := s.snapshots[snapshotKey(teamID, memberID)]
	s.mu.Unlock()
	if ok {
		return snap, nil
	}
	return s.Load(ctx, teamID, memberID)
}

// SaveFeedback writes manager feedback through to the platform API and,
// on success, patches the matching snapshot record in place. Only the
// record matching BOTH member_id and session_id is touched.
func (s *Service) SaveFeedback(ctx context.Context, teamID, memberID, sessionID, feedback string) error {
	if err := s.api.SaveFeedback(ctx, memberID, sessionID, feedback); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshots[snapshotKey(teamID, memberID)]
	for i := range snap {
		if snap[i].MemberID == memberID && snap[i].SessionID == sessionID {
			snap[i].ManagerFeedback = feedback
		}
	}
	return nil
}
