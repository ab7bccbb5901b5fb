package models

import (
	"encoding/json"
	"time"
)

// Whiteboard holds the drawing items of one board, usually keyed by match id.
// Items are opaque to the server; clients own the stroke format.
type Whiteboard struct {
	ID        string            `json:"id"`
	Items     []json.RawMessage `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
