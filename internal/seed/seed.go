package seed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quizdesk/quizdesk/internal/account"
	"github.com/quizdesk/quizdesk/internal/catalog"
)

// EnsureAdmin creates the bootstrap admin if it does not exist. The
// stored secret is a bcrypt hash, unlike registered accounts.
func EnsureAdmin(ctx context.Context, accounts account.Store, name, email, passHash string, log *slog.Logger) error {
	_, err := accounts.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return err
	}
	_, err = accounts.Create(ctx, account.Account{
		Name:   name,
		Email:  email,
		Secret: passHash,
		Role:   account.RoleAdmin,
		Active: true,
	})
	if err != nil {
		return err
	}
	log.Info("bootstrap admin created", "email", email)
	return nil
}

// SampleData loads a small demo data set: one approved examiner with a
// quiz, one taker assigned to that examiner. Intended for local runs.
func SampleData(ctx context.Context, accounts account.Store, cat catalog.Store, log *slog.Logger) error {
	if _, err := accounts.GetByEmail(ctx, "examiner@quizdesk.local"); err == nil {
		return nil
	} else if !errors.Is(err, account.ErrNotFound) {
		return err
	}

	examiner := account.New("Demo Examiner", "examiner@quizdesk.local", "examiner", account.RoleExaminer)
	examiner.ApprovalStatus = account.ApprovalApproved
	examiner.Active = true
	examiner, err := accounts.Create(ctx, examiner)
	if err != nil {
		return err
	}

	user := account.New("Demo Student", "student@quizdesk.local", "student", account.RoleUser)
	user.AssignedExaminerID = examiner.ID
	if _, err := accounts.Create(ctx, user); err != nil {
		return err
	}

	quiz, err := cat.CreateQuiz(ctx, catalog.Quiz{
		Title:        "General Knowledge",
		Description:  "A short warm-up quiz",
		TimeLimitMin: 10,
		Active:       true,
		ExaminerID:   examiner.ID,
	})
	if err != nil {
		return err
	}
	questions := []struct {
		text    string
		options []catalog.Option
	}{
		{
			text: "Which planet is known as the Red Planet?",
			options: []catalog.Option{
				{Text: "Venus"},
				{Text: "Mars", IsCorrect: true},
				{Text: "Jupiter"},
			},
		},
		{
			text: "What is the capital of France?",
			options: []catalog.Option{
				{Text: "Paris", IsCorrect: true},
				{Text: "Lyon"},
				{Text: "Marseille"},
			},
		},
	}
	for _, qd := range questions {
		q, err := cat.AddQuestion(ctx, quiz.ID, catalog.Question{Text: qd.text, Points: 10})
		if err != nil {
			return err
		}
		for _, o := range qd.options {
			if _, err := cat.AddOption(ctx, q.ID, o); err != nil {
				return err
			}
		}
	}
	log.Info("sample data created", "quiz", quiz.ID, "examiner", examiner.Email)
	return nil
}
