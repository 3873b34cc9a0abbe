package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/account"
	"github.com/quizdesk/quizdesk/internal/catalog"
	"github.com/quizdesk/quizdesk/internal/results"
)

// GET /api/examiner/quizzes
func ExaminerQuizzesHandler(accounts account.Store, cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examiner, err := currentAccount(r, accounts)
		if err != nil {
			writeError(w, err)
			return
		}
		quizzes, err := cat.ListByExaminer(r.Context(), examiner.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := []map[string]any{}
		for _, q := range quizzes {
			out = append(out, map[string]any{
				"id":            q.ID,
				"title":         q.Title,
				"description":   q.Description,
				"timeLimit":     q.TimeLimitMin,
				"active":        q.Active,
				"createdAt":     q.CreatedAt,
				"questionCount": q.QuestionCount,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /api/examiner/create-quiz
//
// Accepts the full quiz tree in one payload: questions in order, each
// with its options in order.
func CreateQuizHandler(accounts account.Store, cat catalog.Store) http.HandlerFunc {
	type optionReq struct {
		OptionText string `json:"optionText"`
		IsCorrect  bool   `json:"isCorrect"`
	}
	type questionReq struct {
		QuestionText string      `json:"questionText"`
		Points       int         `json:"points"`
		Options      []optionReq `json:"options"`
	}
	type quizReq struct {
		Title       string        `json:"title"`
		Description string        `json:"description"`
		TimeLimit   int           `json:"timeLimit"`
		Questions   []questionReq `json:"questions"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		examiner, err := currentAccount(r, accounts)
		if err != nil {
			writeError(w, err)
			return
		}
		var req quizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Title == "" {
			writeMessage(w, http.StatusBadRequest, "Title is required")
			return
		}

		quiz, err := cat.CreateQuiz(r.Context(), catalog.Quiz{
			Title:        req.Title,
			Description:  req.Description,
			TimeLimitMin: req.TimeLimit,
			Active:       true,
			ExaminerID:   examiner.ID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		for _, qd := range req.Questions {
			points := qd.Points
			if points <= 0 {
				points = 1
			}
			question, err := cat.AddQuestion(r.Context(), quiz.ID, catalog.Question{
				Text:   qd.QuestionText,
				Points: points,
			})
			if err != nil {
				writeError(w, err)
				return
			}
			for _, od := range qd.Options {
				if _, err := cat.AddOption(r.Context(), question.ID, catalog.Option{
					Text:      od.OptionText,
					IsCorrect: od.IsCorrect,
				}); err != nil {
					writeError(w, err)
					return
				}
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Quiz created successfully",
			"quizId":  quiz.ID,
		})
	}
}

// PUT /api/examiner/quizzes/{quizID}/status  { "active": bool }
func UpdateQuizStatusHandler(accounts account.Store, cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, quiz, ok := ownedQuiz(w, r, accounts, cat)
		if !ok {
			return
		}
		var req struct {
			Active *bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
			writeMessage(w, http.StatusBadRequest, "Active status is required")
			return
		}
		updated, err := cat.SetQuizActive(r.Context(), quiz.ID, *req.Active)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"quizId": updated.ID, "active": updated.Active})
	}
}

// DELETE /api/examiner/quizzes/{quizID}
func DeleteQuizHandler(accounts account.Store, cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, quiz, ok := ownedQuiz(w, r, accounts, cat)
		if !ok {
			return
		}
		if err := cat.DeleteQuiz(r.Context(), quiz.ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Quiz deleted"})
	}
}

// GET /api/examiner/quizzes/{quizID}/results
func QuizResultsHandler(accounts account.Store, cat catalog.Store, agg *results.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, quiz, ok := ownedQuiz(w, r, accounts, cat)
		if !ok {
			return
		}
		stats, attempts, err := agg.QuizStats(r.Context(), quiz.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"statistics": stats,
			"attempts":   attempts,
		})
	}
}

// GET /api/examiner/quizzes/{quizID}/export-csv
func ExportCSVHandler(accounts account.Store, cat catalog.Store, agg *results.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, quiz, ok := ownedQuiz(w, r, accounts, cat)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=quiz_results_%s.csv", quiz.ID))
		if err := agg.WriteCSV(r.Context(), w, quiz.ID); err != nil {
			writeError(w, err)
			return
		}
	}
}

// GET /api/examiner/quizzes/{quizID}/attempts/{attemptID}
func AttemptDetailHandler(accounts account.Store, cat catalog.Store, agg *results.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, quiz, ok := ownedQuiz(w, r, accounts, cat)
		if !ok {
			return
		}
		attemptID := chi.URLParam(r, "attemptID")
		detail, err := agg.SessionDetail(r.Context(), attemptID)
		if err != nil {
			writeError(w, err)
			return
		}
		if detail.QuizID != quiz.ID {
			writeMessage(w, http.StatusBadRequest, "Quiz attempt does not belong to the specified quiz")
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// ownedQuiz loads the quiz from the route and enforces that the acting
// examiner owns it. The catalog itself does not authorize.
func ownedQuiz(w http.ResponseWriter, r *http.Request, accounts account.Store, cat catalog.Store) (account.Account, catalog.Quiz, bool) {
	examiner, err := currentAccount(r, accounts)
	if err != nil {
		writeError(w, err)
		return account.Account{}, catalog.Quiz{}, false
	}
	quiz, err := cat.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, err)
		return account.Account{}, catalog.Quiz{}, false
	}
	if quiz.ExaminerID != examiner.ID {
		writeMessage(w, http.StatusForbidden, "Unauthorized")
		return account.Account{}, catalog.Quiz{}, false
	}
	return examiner, quiz, true
}
