package models

import "time"

// MatchStatus is the lifecycle state of a match request.
type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchAccepted MatchStatus = "accepted"
	MatchDeclined MatchStatus = "declined"
)

// Match pairs an initiator (User1ID) with a receiver (User2ID) around one
// skill each side brings.
type Match struct {
	ID             string      `json:"id"`
	User1ID        string      `json:"user1Id"`
	User2ID        string      `json:"user2Id"`
	SkillOfferedID string      `json:"skillOfferedId"`
	SkillWantedID  string      `json:"skillWantedId"`
	Status         MatchStatus `json:"status"`
	ScheduledTime  *time.Time  `json:"scheduledTime"`
	MeetLink       *string     `json:"meetLink"`
}

// RecordID implements store.Record.
func (m Match) RecordID() string { return m.ID }

// Involves reports whether userID is one of the two parties.
func (m *Match) Involves(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Partner returns the other party of the match.
func (m *Match) Partner(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// SessionStatus tracks a single exchange session held under a match.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Session records one held exchange. It is decoupled from the match status.
type Session struct {
	ID        string        `json:"id"`
	MatchID   string        `json:"matchId"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Status    SessionStatus `json:"status"`
}

// RecordID implements store.Record.
func (s Session) RecordID() string { return s.ID }

// Feedback is one party's rating of a session.
type Feedback struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RecordID implements store.Record.
func (f Feedback) RecordID() string { return f.ID }
