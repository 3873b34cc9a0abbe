package catalog

import (
	"context"
	"errors"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
)

type Store interface {
	CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
	// GetQuiz loads the full tree: questions and options in insertion
	// order, answer keys included. Callers redact before serving takers.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	AddQuestion(ctx context.Context, quizID string, q Question) (Question, error)
	AddOption(ctx context.Context, questionID string, o Option) (Option, error)
	SetQuizActive(ctx context.Context, id string, active bool) (Quiz, error)
	// DeleteQuiz cascades to questions and options.
	DeleteQuiz(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]Quiz, error)
	ListActiveByExaminer(ctx context.Context, examinerID string) ([]Quiz, error)
	ListByExaminer(ctx context.Context, examinerID string) ([]Quiz, error)
}
