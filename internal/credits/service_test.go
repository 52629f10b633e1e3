package credits

import (
	"context"
	"errors"
	"testing"
)

type fakeLedger struct {
	balance int64

	addCalls        []string
	removeCalls     []string
	automationCalls []string
	removedUsers    []string

	failAddAfter int // fail the Nth AddCredits call (1-based); 0 = never
	removeErr    error
}

func (f *fakeLedger) Users(ctx context.Context, teamID string) ([]User, error) {
	return nil, nil
}

func (f *fakeLedger) Balance(ctx context.Context, teamID, memberID string) (int64, error) {
	return f.balance, nil
}

func (f *fakeLedger) AddCredits(ctx context.Context, from, to, teamID string, amount int64) error {
	f.addCalls = append(f.addCalls, to)
	if f.failAddAfter > 0 && len(f.addCalls) >= f.failAddAfter {
		return &APIError{StatusCode: 422, Message: "insufficient balance"}
	}
	return nil
}

func (f *fakeLedger) RemoveCredits(ctx context.Context, memberID, teamID string, amount int64) error {
	f.removeCalls = append(f.removeCalls, memberID)
	return nil
}

func (f *fakeLedger) UpdateMonthlyCredits(ctx context.Context, managerID, memberID, teamID string, amount int64) error {
	f.automationCalls = append(f.automationCalls, memberID)
	return nil
}

func (f *fakeLedger) RemoveUser(ctx context.Context, memberID, teamID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removedUsers = append(f.removedUsers, memberID)
	return nil
}

type fakeNotifier struct {
	err   error
	calls int
}

func (f *fakeNotifier) MemberRemoved(ctx context.Context, memberID, teamID string) error {
	f.calls++
	return f.err
}

func newTestService(ledger *fakeLedger, notifier Notifier) *Service {
	return NewService(ledger, notifier, nil, NoDelay{}, nil)
}

func TestAddCredits_PreCheckRejects(t *testing.T) {
	ledger := &fakeLedger{balance: 5}
	svc := newTestService(ledger, nil)

	err := svc.AddCredits(context.Background(), "t1", "mgr", "m1", 10)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if len(ledger.addCalls) != 0 {
		t.Fatalf("no ledger request may be sent after a failed pre-check")
	}
}

func TestAddCredits_ExactBalanceAllowed(t *testing.T) {
	ledger := &fakeLedger{balance: 10}
	svc := newTestService(ledger, nil)

	if err := svc.AddCredits(context.Background(), "t1", "mgr", "m1", 10); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ledger.addCalls) != 1 || ledger.addCalls[0] != "m1" {
		t.Fatalf("expected one transfer to m1, got %v", ledger.addCalls)
	}
}

func TestRemoveCredits_NoClientPreCheck(t *testing.T) {
	ledger := &fakeLedger{balance: 0}
	svc := newTestService(ledger, nil)

	if err := svc.RemoveCredits(context.Background(), "t1", "mgr", "m1", 50); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ledger.removeCalls) != 1 {
		t.Fatalf("withdrawal must reach the ledger without a balance check")
	}
}

func TestSetMonthlyAutomation_ZeroCancelsWithoutPreCheck(t *testing.T) {
	ledger := &fakeLedger{balance: 0}
	svc := newTestService(ledger, nil)

	if err := svc.SetMonthlyAutomation(context.Background(), "t1", "mgr", "m1", 0); err != nil {
		t.Fatalf("cancel must not require balance, got %v", err)
	}
	if len(ledger.automationCalls) != 1 {
		t.Fatalf("expected cancel request, got %v", ledger.automationCalls)
	}
}

func TestSetMonthlyAutomation_PreChecksNonzero(t *testing.T) {
	ledger := &fakeLedger{balance: 3}
	svc := newTestService(ledger, nil)

	err := svc.SetMonthlyAutomation(context.Background(), "t1", "mgr", "m1", 5)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if len(ledger.automationCalls) != 0 {
		t.Fatalf("no request may be sent after a failed pre-check")
	}
}

func TestRemoveUser_WebhookFailureAbortsRemoval(t *testing.T) {
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	svc := newTestService(ledger, notifier)

	err := svc.RemoveUser(context.Background(), "t1", "m1")
	if err == nil {
		t.Fatalf("expected error when notification fails")
	}
	if len(ledger.removedUsers) != 0 {
		t.Fatalf("removal must not proceed after a failed webhook")
	}
}

func TestRemoveUser_NotifiesBeforeRemoval(t *testing.T) {
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	svc := newTestService(ledger, notifier)

	if err := svc.RemoveUser(context.Background(), "t1", "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if notifier.calls != 1 || len(ledger.removedUsers) != 1 {
		t.Fatalf("expected webhook then removal, got calls=%d removed=%v", notifier.calls, ledger.removedUsers)
	}
}

func TestBulkAddCredits_TotalPreCheckRejectsBeforeAnyRequest(t *testing.T) {
	// 3 users x 10 credits against a balance of 25: nothing may be sent.
	ledger := &fakeLedger{balance: 25}
	svc := newTestService(ledger, nil)

	err := svc.BulkAddCredits(context.Background(), "t1", "mgr", []string{"a", "b", "c"}, 10)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if len(ledger.addCalls) != 0 {
		t.Fatalf("pre-check must reject before the first request, got %v", ledger.addCalls)
	}
}

func TestBulkAddCredits_FailFastLeavesPartialBatch(t *testing.T) {
	ledger := &fakeLedger{balance: 100, failAddAfter: 2}
	svc := newTestService(ledger, nil)

	err := svc.BulkAddCredits(context.Background(), "t1", "mgr", []string{"a", "b", "c"}, 10)
	if err == nil {
		t.Fatalf("expected error from second transfer")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	// First applied, second rejected, third never attempted.
	if len(ledger.addCalls) != 2 {
		t.Fatalf("expected the queue to abort after the failure, got %v", ledger.addCalls)
	}
}

func TestBulkRemoveCredits_EmptySelection(t *testing.T) {
	svc := newTestService(&fakeLedger{}, nil)
	err := svc.BulkRemoveCredits(context.Background(), "t1", "mgr", nil, 10)
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestBulkSetAutomation_SequentialCalls(t *testing.T) {
	ledger := &fakeLedger{balance: 100}
	svc := newTestService(ledger, nil)

	if err := svc.BulkSetAutomation(context.Background(), "t1", "mgr", []string{"a", "b"}, 20); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ledger.automationCalls) != 2 || ledger.automationCalls[0] != "a" || ledger.automationCalls[1] != "b" {
		t.Fatalf("expected sequential calls in selection order, got %v", ledger.automationCalls)
	}
}
