package domain

import "time"

// AuditKind groups audit lines so the log sink can filter them by setting.
type AuditKind string

const (
	AuditPurchase AuditKind = "purchase"
	AuditBalance  AuditKind = "balance"
	AuditCatalog  AuditKind = "catalog"
)

// AuditEntry is one line sent to the guild log channel.
type AuditEntry struct {
	ID        string    `json:"id"`
	Kind      AuditKind `json:"kind"`
	ActorID   string    `json:"actor_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
