package entities

import "time"

// NotificationCategory groups operator-facing notifications
type NotificationCategory string

const (
	NotificationCoverageTierChanged NotificationCategory = "coverage_tier_changed"
	NotificationCoverageGap         NotificationCategory = "coverage_gap"
)

// NotificationStatus represents the delivery status
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusRead    NotificationStatus = "read"
)

// Notification is an operator-facing message. Delivery is owned by the
// notification subsystem; the engine only records it.
type Notification struct {
	ID         string               `json:"id" db:"id"`
	OperatorID string               `json:"operator_id" db:"operator_id"`
	Category   NotificationCategory `json:"category" db:"category"`
	Subject    string               `json:"subject" db:"subject"`
	Body       string               `json:"body" db:"body"`
	Status     NotificationStatus   `json:"status" db:"status"`
	CreatedAt  time.Time            `json:"created_at" db:"created_at"`
}

// AuditRecord is one entry of the platform audit log
type AuditRecord struct {
	ID         string                 `json:"id" db:"id"`
	EntityType string                 `json:"entity_type" db:"entity_type"`
	EntityID   string                 `json:"entity_id" db:"entity_id"`
	Action     string                 `json:"action" db:"action"`
	ActorID    string                 `json:"actor_id" db:"actor_id"`
	Metadata   map[string]interface{} `json:"metadata" db:"metadata"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}
