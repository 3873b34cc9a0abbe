package session

import "time"

// Answer records what the taker chose for one question. Exactly one of
// OptionID or TextResponse is set: a selection is auto-graded, free text
// always scores zero pending manual review.
type Answer struct {
	ID           string `json:"id"`
	SessionID    string `json:"sessionId"`
	QuestionID   string `json:"questionId"`
	OptionID     string `json:"optionId,omitempty"`
	TextResponse string `json:"textResponse,omitempty"`
	Correct      bool   `json:"correct"`
	Ord          int    `json:"-"`
}

// Session is one user's attempt at one quiz. Once Completed is set the
// session is sealed: score and completion time never change again.
type Session struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	QuizID      string     `json:"quizId"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Score       *int       `json:"score,omitempty"`
	Completed   bool       `json:"completed"`
	Answers     []Answer   `json:"answers,omitempty"`
}

// SubmittedAnswer is one entry of a submission payload after wire-shape
// normalization.
type SubmittedAnswer struct {
	QuestionID string
	OptionID   string
	Text       string
}
