package models

import "time"

// MessageType distinguishes text from media payloads.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
)

// SystemSenderID marks messages posted by the platform itself.
const SystemSenderID = "0"

// Message is one chat entry inside a match.
type Message struct {
	ID        string      `json:"id"`
	MatchID   string      `json:"matchId"`
	SenderID  string      `json:"senderId"`
	Text      string      `json:"text,omitempty"`
	MediaURL  string      `json:"mediaUrl,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Read      bool        `json:"read"`
}

// RecordID implements store.Record.
func (m Message) RecordID() string { return m.ID }
