package credits

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"salescoach-platform/internal/audit"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrNoSelection         = errors.New("no users selected")
	ErrBulkInProgress      = errors.New("bulk operation already in progress")
)

// Ledger is the slice of the credits API the service needs. The remote
// ledger owns all balance state and is the final authority on every
// mutation; client-side checks are optimistic only.
type Ledger interface {
	Users(ctx context.Context, teamID string) ([]User, error)
	Balance(ctx context.Context, teamID, memberID string) (int64, error)
	AddCredits(ctx context.Context, fromMemberID, toMemberID, teamID string, amount int64) error
	RemoveCredits(ctx context.Context, memberID, teamID string, amount int64) error
	UpdateMonthlyCredits(ctx context.Context, managerID, memberID, teamID string, amount int64) error
	RemoveUser(ctx context.Context, memberID, teamID string) error
}

// Identity is one acting (team, member) pair seen by the view.
type Identity struct {
	TeamID   string
	MemberID string
}

// Service implements the credit-management view operations: balance
// transfers, monthly automations, member removal and their bulk
// variants. Bulk operations are sequential single calls paced by the
// delay policy; a failure aborts the remaining queue and already-applied
// items are not rolled back.
type Service struct {
	ledger   Ledger
	notifier Notifier
	cache    *Cache
	delay    DelayPolicy
	auditor  *audit.Service

	mu     sync.Mutex
	active map[Identity]time.Time
}

func NewService(ledger Ledger, notifier Notifier, cache *Cache, delay DelayPolicy, auditor *audit.Service) *Service {
	if delay == nil {
		delay = FixedDelay(100 * time.Millisecond)
	}
	return &Service{
		ledger:   ledger,
		notifier: notifier,
		cache:    cache,
		delay:    delay,
		auditor:  auditor,
		active:   map[Identity]time.Time{},
	}
}

// Users returns the team's member rows, serving the cached snapshot
// when present.
func (s *Service) Users(ctx context.Context, teamID string) ([]User, error) {
	if teamID == "" {
		return nil, ErrInvalidArgument
	}
	if s.cache != nil {
		if users, ok, err := s.cache.Users(ctx, teamID); err == nil && ok {
			return users, nil
		}
	}
	return s.refreshUsers(ctx, teamID)
}

// Balance returns the member's balance, serving the cached snapshot
// when present, and marks the identity active for periodic refresh.
func (s *Service) Balance(ctx context.Context, teamID, memberID string) (int64, error) {
	if teamID == "" || memberID == "" {
		return 0, ErrInvalidArgument
	}
	s.markActive(teamID, memberID)

	if s.cache != nil {
		if bal, ok, err := s.cache.Balance(ctx, teamID, memberID); err == nil && ok {
			return bal, nil
		}
	}
	return s.refreshBalance(ctx, teamID, memberID)
}

// AddCredits transfers amount from the acting member to another member.
// The transfer is rejected locally when the acting balance is too low;
// the ledger performs the authoritative, atomic check on its side.
func (s *Service) AddCredits(ctx context.Context, teamID, actorID, toMemberID string, amount int64) error {
	if teamID == "" || actorID == "" || toMemberID == "" || amount <= 0 {
		return ErrInvalidArgument
	}

	bal, err := s.Balance(ctx, teamID, actorID)
	if err != nil {
		return err
	}
	if amount > bal {
		return ErrInsufficientCredits
	}

	if err := s.ledger.AddCredits(ctx, actorID, toMemberID, teamID, amount); err != nil {
		return err
	}
	s.auditTransfer(ctx, audit.EventTypeCreditAdd, teamID, actorID, toMemberID, amount)
	s.reconcile(ctx, teamID, actorID)
	return nil
}

// RemoveCredits withdraws amount from a member. There is no client-side
// balance check; the ledger may reject.
func (s *Service) RemoveCredits(ctx context.Context, teamID, actorID, memberID string, amount int64) error {
	if teamID == "" || memberID == "" || amount <= 0 {
		return ErrInvalidArgument
	}

	if err := s.ledger.RemoveCredits(ctx, memberID, teamID, amount); err != nil {
		return err
	}
	s.auditTransfer(ctx, audit.EventTypeCreditRemove, teamID, actorID, memberID, amount)
	s.reconcile(ctx, teamID, actorID)
	return nil
}

// SetMonthlyAutomation sets a recurring monthly grant from manager to
// member. Amount 0 cancels the automation and needs no balance;
// a nonzero amount is pre-checked against the manager's balance at call
// time.
func (s *Service) SetMonthlyAutomation(ctx context.Context, teamID, managerID, memberID string, amount int64) error {
	if teamID == "" || managerID == "" || memberID == "" || amount < 0 {
		return ErrInvalidArgument
	}

	if amount > 0 {
		bal, err := s.Balance(ctx, teamID, managerID)
		if err != nil {
			return err
		}
		if amount > bal {
			return ErrInsufficientCredits
		}
	}

	if err := s.ledger.UpdateMonthlyCredits(ctx, managerID, memberID, teamID, amount); err != nil {
		return err
	}
	if s.auditor != nil {
		_ = s.auditor.LogAutomation(ctx, teamID, managerID, memberID, amount)
	}
	s.reconcile(ctx, teamID, managerID)
	return nil
}

// RemoveUser removes a member from the team. The external webhook is
// notified first; a failed notification aborts the removal.
func (s *Service) RemoveUser(ctx context.Context, teamID, memberID string) error {
	if teamID == "" || memberID == "" {
		return ErrInvalidArgument
	}

	if s.notifier != nil {
		if err := s.notifier.MemberRemoved(ctx, memberID, teamID); err != nil {
			return fmt.Errorf("removal notification failed: %w", err)
		}
	}

	if err := s.ledger.RemoveUser(ctx, memberID, teamID); err != nil {
		return err
	}
	if s.auditor != nil {
		_ = s.auditor.LogRemoval(ctx, teamID, memberID)
	}
	if _, err := s.refreshUsers(ctx, teamID); err != nil {
		// Stale list until the next tick; accepted.
		return nil
	}
	return nil
}

// BulkAddCredits transfers amount to each selected member in sequence.
// The total (amount x selection size) is pre-checked before the first
// request; afterwards the first ledger rejection aborts the remaining
// queue, leaving a partially-applied batch.
func (s *Service) BulkAddCredits(ctx context.Context, teamID, actorID string, memberIDs []string, amount int64) error {
	if teamID == "" || actorID == "" {
		return ErrInvalidArgument
	}
	if len(memberIDs) == 0 {
		return ErrNoSelection
	}
	if amount <= 0 {
		return ErrInvalidArgument
	}

	unlock, err := s.lockBulk(ctx, teamID)
	if err != nil {
		return err
	}
	defer unlock()

	total := amount * int64(len(memberIDs))
	bal, err := s.Balance(ctx, teamID, actorID)
	if err != nil {
		return err
	}
	if total > bal {
		return ErrInsufficientCredits
	}

	for i, memberID := range memberIDs {
		if err := s.ledger.AddCredits(ctx, actorID, memberID, teamID, amount); err != nil {
			return fmt.Errorf("add credits to %s: %w", memberID, err)
		}
		s.auditTransfer(ctx, audit.EventTypeCreditAdd, teamID, actorID, memberID, amount)
		if i < len(memberIDs)-1 {
			if err := s.delay.Wait(ctx); err != nil {
				return err
			}
		}
	}
	s.reconcile(ctx, teamID, actorID)
	return nil
}

// BulkRemoveCredits withdraws amount from each selected member in
// sequence, fail-fast, with no client-side balance check.
func (s *Service) BulkRemoveCredits(ctx context.Context, teamID, actorID string, memberIDs []string, amount int64) error {
	if teamID == "" {
		return ErrInvalidArgument
	}
	if len(memberIDs) == 0 {
		return ErrNoSelection
	}
	if amount <= 0 {
		return ErrInvalidArgument
	}

	unlock, err := s.lockBulk(ctx, teamID)
	if err != nil {
		return err
	}
	defer unlock()

	for i, memberID := range memberIDs {
		if err := s.ledger.RemoveCredits(ctx, memberID, teamID, amount); err != nil {
			return fmt.Errorf("remove credits from %s: %w", memberID, err)
		}
		s.auditTransfer(ctx, audit.EventTypeCreditRemove, teamID, actorID, memberID, amount)
		if i < len(memberIDs)-1 {
			if err := s.delay.Wait(ctx); err != nil {
				return err
			}
		}
	}
	s.reconcile(ctx, teamID, actorID)
	return nil
}

// BulkSetAutomation sets a monthly automation for each selected member,
// pre-checking the combined amount against the manager's balance before
// the first request.
func (s *Service) BulkSetAutomation(ctx context.Context, teamID, managerID string, memberIDs []string, amount int64) error {
	if teamID == "" || managerID == "" {
		return ErrInvalidArgument
	}
	if len(memberIDs) == 0 {
		return ErrNoSelection
	}
	if amount <= 0 {
		return ErrInvalidArgument
	}

	unlock, err := s.lockBulk(ctx, teamID)
	if err != nil {
		return err
	}
	defer unlock()

	total := amount * int64(len(memberIDs))
	bal, err := s.Balance(ctx, teamID, managerID)
	if err != nil {
		return err
	}
	if total > bal {
		return ErrInsufficientCredits
	}

	for i, memberID := range memberIDs {
		if err := s.ledger.UpdateMonthlyCredits(ctx, managerID, memberID, teamID, amount); err != nil {
			return fmt.Errorf("update automation for %s: %w", memberID, err)
		}
		if s.auditor != nil {
			_ = s.auditor.LogAutomation(ctx, teamID, managerID, memberID, amount)
		}
		if i < len(memberIDs)-1 {
			if err := s.delay.Wait(ctx); err != nil {
				return err
			}
		}
	}
	s.reconcile(ctx, teamID, managerID)
	return nil
}

// RefreshBalances re-fetches balances for identities seen recently.
// Called from the periodic balance job; failures leave the previous
// snapshot in place until the next tick.
func (s *Service) RefreshBalances(ctx context.Context) error {
	var firstErr error
	for _, id := range s.activeIdentities() {
		if _, err := s.refreshBalance(ctx, id.TeamID, id.MemberID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RefreshMonthly re-fetches the user lists, whose rows carry the
// monthly-credit amounts and pending flags, for every recently active
// team. Runs on its own timer, independent of the balance job.
func (s *Service) RefreshMonthly(ctx context.Context) error {
	var firstErr error
	teams := map[string]bool{}
	for _, id := range s.activeIdentities() {
		teams[id.TeamID] = true
	}
	for teamID := range teams {
		if _, err := s.refreshUsers(ctx, teamID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// auditTransfer records a completed credit movement. Best-effort: a
// failed append never undoes or blocks the mutation it describes.
func (s *Service) auditTransfer(ctx context.Context, typ audit.EventType, teamID, actorID, targetID string, amount int64) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.LogTransfer(ctx, typ, teamID, actorID, targetID, amount)
}

// lockBulk guards a team against overlapping sequential bulk runs.
// With no cache configured the guard is skipped. A Redis failure is
// also skipped rather than blocking mutations on cache health.
func (s *Service) lockBulk(ctx context.Context, teamID string) (func(), error) {
	if s.cache == nil {
		return func() {}, nil
	}
	token, ok, err := s.cache.TryBulkLock(ctx, teamID)
	if err != nil {
		return func() {}, nil
	}
	if !ok {
		return nil, ErrBulkInProgress
	}
	return func() { _ = s.cache.ReleaseBulkLock(ctx, teamID, token) }, nil
}

// activeIdentityTTL bounds how long an idle dashboard identity keeps
// being refreshed.
const activeIdentityTTL = 10 * time.Minute

func (s *Service) markActive(teamID, memberID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[Identity{TeamID: teamID, MemberID: memberID}] = time.Now()
}

func (s *Service) activeIdentities() []Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-activeIdentityTTL)
	out := make([]Identity, 0, len(s.active))
	for id, seen := range s.active {
		if seen.Before(cutoff) {
			delete(s.active, id)
			continue
		}
		out = append(out, id)
	}
	return out
}

func (s *Service) refreshBalance(ctx context.Context, teamID, memberID string) (int64, error) {
	bal, err := s.ledger.Balance(ctx, teamID, memberID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.SetBalance(ctx, teamID, memberID, bal)
	}
	return bal, nil
}

func (s *Service) refreshUsers(ctx context.Context, teamID string) ([]User, error) {
	users, err := s.ledger.Users(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetUsers(ctx, teamID, users)
	}
	return users, nil
}

// reconcile re-fetches the acting balance and the team list after a
// mutation. A refresh racing another mutation can briefly show stale
// data; the next tick corrects it.
func (s *Service) reconcile(ctx context.Context, teamID, actorID string) {
	if actorID != "" {
		_, _ = s.refreshBalance(ctx, teamID, actorID)
	}
	_, _ = s.refreshUsers(ctx, teamID)
}
