package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Reader serves the internal ops view of the trail. Reads are scoped to
// one team and bounded; there is no cross-team listing.
type Reader interface {
	Recent(ctx context.Context, teamID string, n int64) ([]Event, error)
}

// Service records internal audit information about credit mutations.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to team members.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.TeamID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogTransfer records a completed single credit transfer or withdrawal.
func (s *Service) LogTransfer(ctx context.Context, typ EventType, teamID, actorID, targetID string, amount int64) error {
	return s.Append(ctx, Event{
		TeamID:         teamID,
		Type:           typ,
		ActorMemberID:  actorID,
		TargetMemberID: targetID,
		Amount:         amount,
	})
}

// LogAutomation records a monthly automation change. Amount 0 means the
// automation was cancelled.
func (s *Service) LogAutomation(ctx context.Context, teamID, managerID, memberID string, amount int64) error {
	typ := EventTypeAutomationSet
	if amount == 0 {
		typ = EventTypeAutomationCancel
	}
	return s.Append(ctx, Event{
		TeamID:         teamID,
		Type:           typ,
		ActorMemberID:  managerID,
		TargetMemberID: memberID,
		Amount:         amount,
	})
}

// LogRemoval records a member removal.
func (s *Service) LogRemoval(ctx context.Context, teamID, memberID string) error {
	return s.Append(ctx, Event{
		TeamID:         teamID,
		Type:           EventTypeMemberRemove,
		TargetMemberID: memberID,
		Message:        "member removed from team",
	})
}
