package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizItem is one multiple-choice question. Options carry their label as
// a prefix ("A) ..."), Answer holds the bare label ("A"). Items are
// immutable once generated; only the set order is randomized, at
// generation time.
type QuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// QuizItemForDisplay is a QuizItem stripped of its correct label, safe to
// hand to the browser before submission.
type QuizItemForDisplay struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizStash is the per-user quiz state held in Redis between generation
// and submission.
type QuizStash struct {
	Difficulty  string     `json:"difficulty"`
	Items       []QuizItem `json:"items"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// GradedItem annotates one quiz item with the submitted answer.
type GradedItem struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	Selected string   `json:"selected"`
	Correct  bool     `json:"correct"`
}

// QuizResult is the outcome of grading a submission. It is derived state;
// only the attempt summary is persisted.
type QuizResult struct {
	Score int          `json:"score"`
	Total int          `json:"total"`
	Items []GradedItem `json:"items"`
}

// QuizAttempt is a persisted summary of a graded quiz.
type QuizAttempt struct {
	ID         uuid.UUID `json:"id"`
	UserID     int       `json:"user_id"`
	Difficulty string    `json:"difficulty"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// GenerateQuizRequest is the difficulty selection form payload. The label
// is caller-selected and deliberately not validated against a fixed
// enumeration, only length-bounded.
type GenerateQuizRequest struct {
	Difficulty string `form:"difficulty" json:"difficulty" binding:"required,max=32"`
}
