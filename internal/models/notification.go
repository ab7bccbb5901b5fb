package models

import "time"

// NotificationType tags the reason a user is alerted.
type NotificationType string

const (
	NotifyMatch   NotificationType = "match"
	NotifyMessage NotificationType = "message"
	NotifySession NotificationType = "session"
	NotifySystem  NotificationType = "system"
	NotifyBadge   NotificationType = "badge"
)

// Notification is addressed to exactly one user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	MatchID   string           `json:"matchId,omitempty"`
}

// RecordID implements store.Record.
func (n Notification) RecordID() string { return n.ID }
