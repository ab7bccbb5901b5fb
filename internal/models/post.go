package models

import "time"

// PostType distinguishes questions from tips in the community feed.
type PostType string

const (
	PostQuestion PostType = "question"
	PostTip      PostType = "tip"
)

// Comment is one reply on a post, kept in insertion order.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is a community feed entry. Likes holds the ids of users who liked it.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
	Type      PostType  `json:"type"`
}

// RecordID implements store.Record.
func (p Post) RecordID() string { return p.ID }
