package audit

import "time"

// Event is an immutable, append-only audit record of a credit mutation.
//
// Invariants:
// - Events are never updated or deleted.
// - team_id is required for tenancy isolation.
// - Callers treat audit logging as best-effort; a failed append never
//   blocks the mutation it describes.

type Event struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type"`

	// ActorMemberID is the member who triggered the mutation.
	ActorMemberID string `json:"actor_member_id,omitempty"`

	// TargetMemberID is the member the mutation applied to.
	TargetMemberID string `json:"target_member_id,omitempty"`

	// Amount is the credit amount involved, when the type carries one.
	Amount int64 `json:"amount,omitempty"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type EventType string

const (
	EventTypeCreditAdd        EventType = "credit_add"
	EventTypeCreditRemove     EventType = "credit_remove"
	EventTypeAutomationSet    EventType = "automation_set"
	EventTypeAutomationCancel EventType = "automation_cancel"
	EventTypeMemberRemove     EventType = "member_remove"
)
