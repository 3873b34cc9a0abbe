package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/account"
	"github.com/quizdesk/quizdesk/internal/catalog"
	"github.com/quizdesk/quizdesk/internal/session"
)

// GET /api/user/quizzes
func ListVisibleQuizzesHandler(accounts account.Store, cat *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentAccount(r, accounts)
		if err != nil {
			writeError(w, err)
			return
		}
		quizzes, err := cat.ListVisible(r.Context(), user)
		if err != nil {
			writeError(w, err)
			return
		}
		out := []map[string]any{}
		for _, q := range quizzes {
			item := map[string]any{
				"id":            q.ID,
				"title":         q.Title,
				"description":   q.Description,
				"timeLimit":     q.TimeLimitMin,
				"createdAt":     q.CreatedAt,
				"questionCount": q.QuestionCount,
			}
			if ex, err := accounts.GetByID(r.Context(), q.ExaminerID); err == nil {
				item["examiner"] = ex.Name
			}
			out = append(out, item)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /api/user/quizzes/{quizID}
//
// Fetching the detail implicitly starts (or resumes) the attempt, so
// re-entering the quiz view never creates a second session.
func QuizDetailHandler(accounts account.Store, cat catalog.Store, engine *session.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentAccount(r, accounts)
		if err != nil {
			writeError(w, err)
			return
		}
		quizID := chi.URLParam(r, "quizID")

		attempt, err := engine.Start(r.Context(), user.ID, quizID)
		if errors.Is(err, session.ErrAlreadyCompleted) {
			writeMessage(w, http.StatusForbidden, "You have already completed this quiz")
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}

		quiz, err := cat.GetQuiz(r.Context(), quizID)
		if err != nil {
			writeError(w, err)
			return
		}

		questions := []map[string]any{}
		for _, q := range quiz.Questions {
			options := []catalog.RedactedOption{}
			for _, o := range q.Options {
				options = append(options, o.Redacted())
			}
			questions = append(questions, map[string]any{
				"id":           q.ID,
				"questionText": q.Text,
				"points":       q.Points,
				"options":      options,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":          quiz.ID,
			"title":       quiz.Title,
			"description": quiz.Description,
			"timeLimit":   quiz.TimeLimitMin,
			"attemptId":   attempt.ID,
			"startedAt":   attempt.StartedAt,
			"questions":   questions,
		})
	}
}

// POST /api/user/submit-quiz/{quizID}  { "answers": [...] }
func SubmitQuizHandler(accounts account.Store, engine *session.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentAccount(r, accounts)
		if err != nil {
			writeError(w, err)
			return
		}
		quizID := chi.URLParam(r, "quizID")

		var req struct {
			Answers json.RawMessage `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		answers := session.ParseSubmission(req.Answers)

		active, ok, err := engine.GetActive(r.Context(), user.ID, quizID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			writeMessage(w, http.StatusNotFound, "No active attempt found")
			return
		}

		sealed, err := engine.Submit(r.Context(), active.ID, answers)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"score":       sealed.Score,
			"completedAt": sealed.CompletedAt,
		})
	}
}

// GET /api/user/history
func UserHistoryHandler(accounts account.Store, cat catalog.Store, engine *session.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentAccount(r, accounts)
		if err != nil {
			writeError(w, err)
			return
		}
		attempts, err := engine.ListByUser(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := []map[string]any{}
		for _, s := range attempts {
			if !s.Completed {
				continue
			}
			item := map[string]any{
				"id":          s.ID,
				"startedAt":   s.StartedAt,
				"completedAt": s.CompletedAt,
				"score":       s.Score,
			}
			if quiz, err := cat.GetQuiz(r.Context(), s.QuizID); err == nil {
				quizInfo := map[string]any{"id": quiz.ID, "title": quiz.Title}
				if ex, err := accounts.GetByID(r.Context(), quiz.ExaminerID); err == nil {
					quizInfo["examiner"] = ex.Name
				}
				item["quiz"] = quizInfo
			}
			out = append(out, item)
		}
		writeJSON(w, http.StatusOK, out)
	}
}
