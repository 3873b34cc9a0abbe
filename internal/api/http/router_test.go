package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/account"
	api "github.com/quizdesk/quizdesk/internal/api/http"
	"github.com/quizdesk/quizdesk/internal/auth"
	authmw "github.com/quizdesk/quizdesk/internal/auth/middleware"
	"github.com/quizdesk/quizdesk/internal/catalog"
	"github.com/quizdesk/quizdesk/internal/rbac"
	"github.com/quizdesk/quizdesk/internal/results"
	"github.com/quizdesk/quizdesk/internal/session"
)

type testEnv struct {
	router   chi.Router
	accounts *account.Service
	store    account.Store
	catalog  catalog.Store
	tokens   *authmw.AuthService
}

// newEnv builds the real route tree over in-memory stores.
func newEnv(t *testing.T) *testEnv {
	t.Helper()
	accountStore := account.NewInMemoryStore()
	catalogStore := catalog.NewInMemoryStore()
	sessionStore := session.NewInMemoryStore()

	accounts := account.NewService(accountStore, nil)
	catalogSvc := catalog.NewService(catalogStore)
	engine := session.NewEngine(sessionStore, catalogStore, nil)
	aggregator := results.NewAggregator(sessionStore, catalogStore, accountStore)
	tokens := authmw.NewAuthService("test-secret", time.Hour)
	gate := auth.NewGate(accountStore, tokens, nil)

	r := chi.NewRouter()
	r.Post("/api/auth/login", api.LoginHandler(gate))
	r.Post("/api/auth/register", api.RegisterHandler(accounts))
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(tokens))
		pr.Route("/api/user", func(ur chi.Router) {
			ur.With(rbac.Require("quiz:list-visible")).
				Get("/quizzes", api.ListVisibleQuizzesHandler(accountStore, catalogSvc))
			ur.With(rbac.Require("quiz:take")).
				Get("/quizzes/{quizID}", api.QuizDetailHandler(accountStore, catalogStore, engine))
			ur.With(rbac.Require("quiz:submit")).
				Post("/submit-quiz/{quizID}", api.SubmitQuizHandler(accountStore, engine))
			ur.With(rbac.Require("history:view-own")).
				Get("/history", api.UserHistoryHandler(accountStore, catalogStore, engine))
		})
		pr.Route("/api/examiner", func(er chi.Router) {
			er.With(rbac.Require("quiz:create")).
				Post("/create-quiz", api.CreateQuizHandler(accountStore, catalogStore))
			er.With(rbac.Require("results:view-own")).
				Get("/quizzes/{quizID}/results", api.QuizResultsHandler(accountStore, catalogStore, aggregator))
			er.With(rbac.Require("results:export")).
				Get("/quizzes/{quizID}/export-csv", api.ExportCSVHandler(accountStore, catalogStore, aggregator))
		})
		pr.Route("/api/admin", func(ar chi.Router) {
			ar.Use(rbac.Require("admin:manage"))
			ar.Post("/examiners/{examinerID}/approve", api.ApproveExaminerHandler(accounts))
		})
	})

	return &testEnv{router: r, accounts: accounts, store: accountStore, catalog: catalogStore, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// token registers (and for examiners approves) an account and returns a
// bearer token for it.
func (e *testEnv) token(t *testing.T, name, email string, role account.Role) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	a, err := e.accounts.Register(req.Context(), name, email, "pw", role)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if role == account.RoleExaminer {
		if _, err := e.accounts.ApproveExaminer(req.Context(), a.ID); err != nil {
			t.Fatalf("approve %s: %v", email, err)
		}
	}
	tok, err := e.tokens.IssueJWT(a.Email, string(a.Role))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)
	examinerTok := e.token(t, "Eve", "eve@example.com", account.RoleExaminer)
	userTok := e.token(t, "Alice", "alice@example.com", account.RoleUser)

	// Examiner creates a two-question quiz.
	rec := e.do(t, "POST", "/api/examiner/create-quiz", examinerTok, map[string]any{
		"title":     "Geography",
		"timeLimit": 10,
		"questions": []map[string]any{
			{
				"questionText": "Capital of France?",
				"points":       10,
				"options": []map[string]any{
					{"optionText": "Paris", "isCorrect": true},
					{"optionText": "Lyon"},
				},
			},
			{
				"questionText": "Capital of Spain?",
				"points":       10,
				"options": []map[string]any{
					{"optionText": "Madrid", "isCorrect": true},
					{"optionText": "Seville"},
				},
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create-quiz: %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		QuizID string `json:"quizId"`
	}
	decode(t, rec, &created)

	// The taker sees it.
	rec = e.do(t, "GET", "/api/user/quizzes", userTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list quizzes: %d %s", rec.Code, rec.Body.String())
	}
	var list []map[string]any
	decode(t, rec, &list)
	if len(list) != 1 || list[0]["title"] != "Geography" {
		t.Fatalf("unexpected quiz list: %+v", list)
	}
	if list[0]["questionCount"] != float64(2) {
		t.Fatalf("expected questionCount 2, got %v", list[0]["questionCount"])
	}

	// Opening the quiz starts the attempt and hides correctness.
	rec = e.do(t, "GET", "/api/user/quizzes/"+created.QuizID, userTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("quiz detail: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "isCorrect") {
		t.Fatalf("answer key leaked into taker view: %s", rec.Body.String())
	}
	var detail struct {
		AttemptID string `json:"attemptId"`
		Questions []struct {
			ID      string `json:"id"`
			Options []struct {
				ID   string `json:"id"`
				Text string `json:"optionText"`
			} `json:"options"`
		} `json:"questions"`
	}
	decode(t, rec, &detail)
	if detail.AttemptID == "" || len(detail.Questions) != 2 {
		t.Fatalf("unexpected detail: %+v", detail)
	}

	// Re-opening resumes the same attempt.
	rec = e.do(t, "GET", "/api/user/quizzes/"+created.QuizID, userTok, nil)
	var again struct {
		AttemptID string `json:"attemptId"`
	}
	decode(t, rec, &again)
	if again.AttemptID != detail.AttemptID {
		t.Fatalf("reopen created a new attempt: %s vs %s", again.AttemptID, detail.AttemptID)
	}

	// Answer the first question with Paris, skip the second: 50.
	var paris string
	for _, o := range detail.Questions[0].Options {
		if o.Text == "Paris" {
			paris = o.ID
		}
	}
	rec = e.do(t, "POST", "/api/user/submit-quiz/"+created.QuizID, userTok, map[string]any{
		"answers": []map[string]any{
			{"questionId": detail.Questions[0].ID, "selectedOptionId": paris},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	var submitted struct {
		Score int `json:"score"`
	}
	decode(t, rec, &submitted)
	if submitted.Score != 50 {
		t.Fatalf("expected score 50, got %d", submitted.Score)
	}

	// Second submit has no active attempt left.
	rec = e.do(t, "POST", "/api/user/submit-quiz/"+created.QuizID, userTok, map[string]any{"answers": []any{}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("resubmit: expected 404, got %d %s", rec.Code, rec.Body.String())
	}

	// Re-opening a completed quiz is refused outright.
	rec = e.do(t, "GET", "/api/user/quizzes/"+created.QuizID, userTok, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("reopen after completion: expected 403, got %d %s", rec.Code, rec.Body.String())
	}
	var refused struct {
		Message string `json:"message"`
	}
	decode(t, rec, &refused)
	if refused.Message != "You have already completed this quiz" {
		t.Fatalf("wrong refusal message: %q", refused.Message)
	}

	// History shows the completed attempt.
	rec = e.do(t, "GET", "/api/user/history", userTok, nil)
	var history []map[string]any
	decode(t, rec, &history)
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %+v", history)
	}

	// Examiner sees the result and can export it.
	rec = e.do(t, "GET", fmt.Sprintf("/api/examiner/quizzes/%s/results", created.QuizID), examinerTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("results: %d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Statistics results.Stats `json:"statistics"`
	}
	decode(t, rec, &res)
	if res.Statistics.Count != 1 || res.Statistics.AverageScore != 50.0 {
		t.Fatalf("unexpected statistics: %+v", res.Statistics)
	}

	rec = e.do(t, "GET", fmt.Sprintf("/api/examiner/quizzes/%s/export-csv", created.QuizID), examinerTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("wrong content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "Student Name,Email,Score,Time Taken (min),Submission Date") {
		t.Fatalf("wrong csv header: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "50%") {
		t.Fatalf("score missing from csv: %s", rec.Body.String())
	}
}

func TestAuthAndRBACBoundaries(t *testing.T) {
	e := newEnv(t)
	userTok := e.token(t, "Alice", "alice@example.com", account.RoleUser)
	examinerTok := e.token(t, "Eve", "eve@example.com", account.RoleExaminer)

	// No token.
	if rec := e.do(t, "GET", "/api/user/quizzes", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	// Garbage token.
	if rec := e.do(t, "GET", "/api/user/quizzes", "not-a-token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	// Wrong role.
	if rec := e.do(t, "POST", "/api/examiner/create-quiz", userTok, map[string]any{"title": "x"}); rec.Code != http.StatusForbidden {
		t.Fatalf("user creating quiz: expected 403, got %d", rec.Code)
	}
	if rec := e.do(t, "GET", "/api/user/quizzes", examinerTok, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("examiner listing user quizzes: expected 403, got %d", rec.Code)
	}
	if rec := e.do(t, "POST", "/api/admin/examiners/x/approve", examinerTok, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("examiner approving examiner: expected 403, got %d", rec.Code)
	}
}

func TestLoginAndRegistrationFlow(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, "POST", "/api/auth/register", "", map[string]any{
		"name": "Eve", "email": "eve@example.com", "password": "pw", "role": "examiner",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	var reg struct {
		UserID         string `json:"userId"`
		ApprovalStatus string `json:"approvalStatus"`
	}
	decode(t, rec, &reg)
	if reg.ApprovalStatus != "pending" {
		t.Fatalf("expected pending examiner, got %q", reg.ApprovalStatus)
	}

	// Login blocked until approval, with the status in the body.
	rec = e.do(t, "POST", "/api/auth/login", "", map[string]any{"email": "eve@example.com", "password": "pw"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pending login: expected 403, got %d %s", rec.Code, rec.Body.String())
	}
	var denied struct {
		ApprovalStatus string `json:"approvalStatus"`
	}
	decode(t, rec, &denied)
	if denied.ApprovalStatus != "pending" {
		t.Fatalf("expected pending in body, got %q", denied.ApprovalStatus)
	}

	adminTok := e.token(t, "Root", "root@example.com", account.RoleAdmin)
	rec = e.do(t, "POST", "/api/admin/examiners/"+reg.UserID+"/approve", adminTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, "POST", "/api/auth/login", "", map[string]any{"email": "eve@example.com", "password": "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login after approval: %d %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	decode(t, rec, &login)
	if login.Token == "" || login.User.Role != "examiner" {
		t.Fatalf("unexpected login response: %+v", login)
	}

	// Duplicate registration conflicts.
	rec = e.do(t, "POST", "/api/auth/register", "", map[string]any{
		"name": "Eve2", "email": "eve@example.com", "password": "pw", "role": "user",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}

	// Wrong password.
	rec = e.do(t, "POST", "/api/auth/login", "", map[string]any{"email": "eve@example.com", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rec.Code)
	}
}
