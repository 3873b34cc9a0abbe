package session_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quizdesk/quizdesk/internal/account"
	"github.com/quizdesk/quizdesk/internal/catalog"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/session"
)

type sqlFixture struct {
	db       *sql.DB
	store    session.Store
	user     account.Account
	quiz     catalog.Quiz
	question catalog.Question
	option   catalog.Option
}

func newSQLFixture(t *testing.T) *sqlFixture {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "sessions.db")
	h, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	accounts := account.NewSQLStore(h)
	examiner, err := accounts.Create(ctx, account.Account{
		Name: "Eve", Email: "eve@example.com", Secret: "pw",
		Role: account.RoleExaminer, Active: true,
	})
	if err != nil {
		t.Fatalf("create examiner: %v", err)
	}
	user, err := accounts.Create(ctx, account.Account{
		Name: "Alice", Email: "alice@example.com", Secret: "pw",
		Role: account.RoleUser, Active: true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	cat := catalog.NewSQLStore(h)
	quiz, err := cat.CreateQuiz(ctx, catalog.Quiz{Title: "Geography", Active: true, ExaminerID: examiner.ID})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	question, err := cat.AddQuestion(ctx, quiz.ID, catalog.Question{Text: "q", Points: 10})
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	option, err := cat.AddOption(ctx, question.ID, catalog.Option{Text: "a", IsCorrect: true})
	if err != nil {
		t.Fatalf("AddOption: %v", err)
	}

	return &sqlFixture{
		db:       h,
		store:    session.NewSQLStore(h),
		user:     user,
		quiz:     quiz,
		question: question,
		option:   option,
	}
}

func TestSQLStartAttempt(t *testing.T) {
	f := newSQLFixture(t)
	ctx := context.Background()

	first, created, err := f.store.StartAttempt(ctx, f.user.ID, f.quiz.ID)
	if err != nil || !created {
		t.Fatalf("first start: created=%v err=%v", created, err)
	}
	second, created, err := f.store.StartAttempt(ctx, f.user.ID, f.quiz.ID)
	if err != nil || created {
		t.Fatalf("second start: created=%v err=%v", created, err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same session, got %s and %s", first.ID, second.ID)
	}

	if _, err := f.store.Complete(ctx, first.ID, nil, 0, time.Now()); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, _, err := f.store.StartAttempt(ctx, f.user.ID, f.quiz.ID); !errors.Is(err, session.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestSQLOpenSessionUniqueIndex(t *testing.T) {
	f := newSQLFixture(t)
	ctx := context.Background()

	if _, _, err := f.store.StartAttempt(ctx, f.user.ID, f.quiz.ID); err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	// A second open row for the pair must be impossible even when the
	// store's check is bypassed.
	_, err := f.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, quiz_id, started_at, completed) VALUES ($1,$2,$3,$4,$5)`,
		"rogue-session", f.user.ID, f.quiz.ID, time.Now().Unix(), false)
	if err == nil {
		t.Fatalf("duplicate open session accepted despite ux_sessions_open")
	}
}

func TestSQLCompleteSealsOnce(t *testing.T) {
	f := newSQLFixture(t)
	ctx := context.Background()

	s, _, err := f.store.StartAttempt(ctx, f.user.ID, f.quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	answers := []session.Answer{
		{QuestionID: f.question.ID, OptionID: f.option.ID, Correct: true},
		{QuestionID: f.question.ID, TextResponse: "free text"},
	}
	completedAt := time.Now()
	sealed, err := f.store.Complete(ctx, s.ID, answers, 100, completedAt)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !sealed.Completed || sealed.Score == nil || *sealed.Score != 100 {
		t.Fatalf("seal incomplete: %+v", sealed)
	}
	if sealed.CompletedAt == nil || sealed.CompletedAt.Unix() != completedAt.Unix() {
		t.Fatalf("completed_at mismatch: %+v", sealed.CompletedAt)
	}
	if len(sealed.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(sealed.Answers))
	}
	if sealed.Answers[0].OptionID != f.option.ID || !sealed.Answers[0].Correct {
		t.Fatalf("first answer wrong: %+v", sealed.Answers[0])
	}
	if sealed.Answers[1].OptionID != "" || sealed.Answers[1].TextResponse != "free text" {
		t.Fatalf("second answer wrong: %+v", sealed.Answers[1])
	}

	if _, err := f.store.Complete(ctx, s.ID, nil, 0, time.Now()); !errors.Is(err, session.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	stored, err := f.store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *stored.Score != 100 {
		t.Fatalf("score changed by rejected reseal: %d", *stored.Score)
	}
}

func TestSQLGetActive(t *testing.T) {
	f := newSQLFixture(t)
	ctx := context.Background()

	if _, ok, err := f.store.GetActive(ctx, f.user.ID, f.quiz.ID); err != nil || ok {
		t.Fatalf("expected no active session, got ok=%v err=%v", ok, err)
	}
	s, _, err := f.store.StartAttempt(ctx, f.user.ID, f.quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	active, ok, err := f.store.GetActive(ctx, f.user.ID, f.quiz.ID)
	if err != nil || !ok || active.ID != s.ID {
		t.Fatalf("expected active %s, got ok=%v id=%s err=%v", s.ID, ok, active.ID, err)
	}
	if _, err := f.store.Complete(ctx, s.ID, nil, 0, time.Now()); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok, _ := f.store.GetActive(ctx, f.user.ID, f.quiz.ID); ok {
		t.Fatalf("completed session still active")
	}
	byQuiz, err := f.store.ListByQuiz(ctx, f.quiz.ID)
	if err != nil || len(byQuiz) != 1 {
		t.Fatalf("ListByQuiz: %v %+v", err, byQuiz)
	}
}
