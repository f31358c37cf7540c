package kestrel

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Category string

const (
	CategoryBilling Category = "billing"
	CategoryTeam    Category = "team"
	CategorySystem  Category = "system"
	CategoryAccount Category = "account"
)

// Notification is a single feed record. Identity is ID, assigned by the
// server; the client only ever mutates Read or removes the record.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  Category  `json:"category"`
	Priority  Priority  `json:"priority"`
	ActionURL string    `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"is_read"`
}
