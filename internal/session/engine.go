package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/quizdesk/quizdesk/internal/catalog"
)

// Engine drives the attempt lifecycle: NoAttempt -> InProgress ->
// Completed, never backwards. One attempt per (user, quiz), one
// submission per attempt.
type Engine struct {
	sessions Store
	catalog  catalog.Store
	log      *slog.Logger
}

func NewEngine(sessions Store, cat catalog.Store, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{sessions: sessions, catalog: cat, log: log}
}

// Start returns the open session for (user, quiz), creating one if
// needed. Calling it twice without a submit in between returns the same
// session; a completed attempt blocks any retake.
func (e *Engine) Start(ctx context.Context, userID, quizID string) (Session, error) {
	quiz, err := e.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return Session{}, err
	}
	if !quiz.Active {
		return Session{}, ErrQuizInactive
	}
	sess, created, err := e.sessions.StartAttempt(ctx, userID, quizID)
	if err != nil {
		return Session{}, err
	}
	if created {
		e.log.Info("attempt started", "session", sess.ID, "user", userID, "quiz", quizID)
	}
	return sess, nil
}

// Submit grades the answers against the session's quiz and seals the
// session. It is not idempotent: a second submit fails.
func (e *Engine) Submit(ctx context.Context, sessionID string, submitted []SubmittedAnswer) (Session, error) {
	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if sess.Completed {
		return Session{}, ErrAlreadyCompleted
	}
	quiz, err := e.catalog.GetQuiz(ctx, sess.QuizID)
	if err != nil {
		return Session{}, err
	}

	questions := map[string]catalog.Question{}
	for _, q := range quiz.Questions {
		questions[q.ID] = q
	}

	totalPoints := 0
	earnedPoints := 0
	answers := []Answer{}
	for _, sa := range submitted {
		q, ok := questions[sa.QuestionID]
		if !ok {
			return Session{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, sa.QuestionID)
		}
		totalPoints += q.Points

		switch {
		case sa.OptionID != "":
			opt, ok := findOption(q, sa.OptionID)
			if !ok {
				return Session{}, fmt.Errorf("%w: %s", ErrUnknownOption, sa.OptionID)
			}
			if opt.IsCorrect {
				earnedPoints += q.Points
			}
			answers = append(answers, Answer{
				QuestionID: q.ID,
				OptionID:   opt.ID,
				Correct:    opt.IsCorrect,
			})
		case sa.Text != "":
			// Free text is stored for later review and scores zero.
			answers = append(answers, Answer{
				QuestionID:   q.ID,
				TextResponse: sa.Text,
			})
		default:
			// Entry carried no usable answer: the question still counts
			// toward the total but nothing is recorded.
			e.log.Debug("no usable answer for question", "session", sessionID, "question", q.ID)
		}
	}

	score := 0
	if totalPoints > 0 {
		score = int(math.Round(float64(earnedPoints) / float64(totalPoints) * 100))
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	sealed, err := e.sessions.Complete(ctx, sessionID, answers, score, time.Now())
	if err != nil {
		return Session{}, err
	}
	e.log.Info("attempt submitted", "session", sealed.ID, "quiz", sealed.QuizID, "score", score)
	return sealed, nil
}

// GetActive returns the unique in-progress session for the pair, if any.
func (e *Engine) GetActive(ctx context.Context, userID, quizID string) (Session, bool, error) {
	return e.sessions.GetActive(ctx, userID, quizID)
}

func (e *Engine) Get(ctx context.Context, id string) (Session, error) {
	return e.sessions.Get(ctx, id)
}

func (e *Engine) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	return e.sessions.ListByUser(ctx, userID)
}

func (e *Engine) ListByQuiz(ctx context.Context, quizID string) ([]Session, error) {
	return e.sessions.ListByQuiz(ctx, quizID)
}

func findOption(q catalog.Question, optionID string) (catalog.Option, bool) {
	for _, o := range q.Options {
		if o.ID == optionID {
			return o, true
		}
	}
	return catalog.Option{}, false
}
