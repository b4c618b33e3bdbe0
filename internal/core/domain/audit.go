package domain

import "time"

// AuditRecord captures who did what to whom. Records are emitted into the
// structured log stream on completed mutations; there is no dedicated store.
type AuditRecord struct {
	ActorID    string    `json:"actor_id"`
	ActorRole  Role      `json:"actor_role"`
	Action     string    `json:"action"`
	TargetID   string    `json:"target_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
