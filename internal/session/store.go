package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrQuizInactive     = errors.New("quiz is not active")
	ErrAlreadyCompleted = errors.New("session already completed")
	ErrUnknownQuestion  = errors.New("question not part of quiz")
	ErrUnknownOption    = errors.New("option not part of question")
)

type Store interface {
	// StartAttempt atomically returns the open session for (user, quiz),
	// creating one if none exists. The check-and-insert runs in a single
	// transaction so two concurrent starts cannot both create a session.
	// Returns ErrAlreadyCompleted when a sealed session exists for the pair.
	StartAttempt(ctx context.Context, userID, quizID string) (Session, bool, error)

	// Get loads a session with its answers in insertion order.
	Get(ctx context.Context, id string) (Session, error)

	// GetActive returns the unique open session for the pair, if any.
	GetActive(ctx context.Context, userID, quizID string) (Session, bool, error)

	// Complete seals the session and writes its answers in one
	// transaction; the open check is atomic with the write, so a second
	// submit always fails with ErrAlreadyCompleted.
	Complete(ctx context.Context, sessionID string, answers []Answer, score int, completedAt time.Time) (Session, error)

	ListByUser(ctx context.Context, userID string) ([]Session, error)
	ListByQuiz(ctx context.Context, quizID string) ([]Session, error)
}
