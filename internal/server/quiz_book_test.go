package server

import (
	"testing"
	"time"

	"skillhive/internal/ai"

	"github.com/stretchr/testify/assert"
)

func TestQuizBook(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newQuizBook(time.Minute)
	b.now = func() time.Time { return now }
	quiz := []ai.QuizQuestion{{Question: "q", Options: []string{"a", "b"}, CorrectIndex: 1}}

	_, ok := b.Take("u1", "s1")
	assert.False(t, ok)

	b.Put("u1", "s1", quiz)
	_, ok = b.Take("u2", "s1")
	assert.False(t, ok, "quizzes are per user")

	got, ok := b.Take("u1", "s1")
	assert.True(t, ok)
	assert.Equal(t, quiz, got)

	_, ok = b.Take("u1", "s1")
	assert.False(t, ok, "a quiz is taken once")

	b.Put("u1", "s1", quiz)
	now = now.Add(2 * time.Minute)
	_, ok = b.Take("u1", "s1")
	assert.False(t, ok, "expired quizzes are dropped")
}
