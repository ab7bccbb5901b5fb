package server

import (
	"sync"
	"time"

	"skillhive/internal/ai"
)

const (
	quizTTL     = 15 * time.Minute
	maxOpenQuiz = 5000
)

type openQuiz struct {
	questions []ai.QuizQuestion
	expires   time.Time
}

// quizBook holds the answer keys of issued verification quizzes so that
// clients only ever see the questions. Each quiz can be graded once.
type quizBook struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]openQuiz
}

func newQuizBook(ttl time.Duration) *quizBook {
	return &quizBook{ttl: ttl, now: time.Now, items: make(map[string]openQuiz)}
}

func quizKey(userID, skillID string) string { return userID + ":" + skillID }

// Put replaces any open quiz of the user for the skill.
func (b *quizBook) Put(userID, skillID string, questions []ai.QuizQuestion) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if len(b.items) >= maxOpenQuiz {
		for k, q := range b.items {
			if now.After(q.expires) {
				delete(b.items, k)
			}
		}
	}
	b.items[quizKey(userID, skillID)] = openQuiz{questions: questions, expires: now.Add(b.ttl)}
}

// Take removes and returns the open quiz, if any and not expired.
func (b *quizBook) Take(userID, skillID string) ([]ai.QuizQuestion, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := quizKey(userID, skillID)
	q, ok := b.items[key]
	if !ok {
		return nil, false
	}
	delete(b.items, key)
	if b.now().After(q.expires) {
		return nil, false
	}
	return q.questions, true
}
