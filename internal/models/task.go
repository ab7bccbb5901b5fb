package models

import "time"

// Difficulty grades a task and fixes its credit reward.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Reward returns the credits granted for completing a task of this difficulty.
func (d Difficulty) Reward() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyMedium:
		return 25
	case DifficultyHard:
		return 50
	default:
		return 0
	}
}

// TaskStatus is pending until the owner completes the task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// Task is a personal learning goal that pays credits on completion.
type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Difficulty    Difficulty `json:"difficulty"`
	CreditsReward int        `json:"creditsReward"`
	Status        TaskStatus `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// RecordID implements store.Record.
func (t Task) RecordID() string { return t.ID }
