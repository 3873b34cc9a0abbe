package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/quizdesk/quizdesk/internal/account"
	api "github.com/quizdesk/quizdesk/internal/api/http"
	"github.com/quizdesk/quizdesk/internal/auth"
	authmw "github.com/quizdesk/quizdesk/internal/auth/middleware"
	"github.com/quizdesk/quizdesk/internal/catalog"
	"github.com/quizdesk/quizdesk/internal/config"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/rbac"
	"github.com/quizdesk/quizdesk/internal/results"
	"github.com/quizdesk/quizdesk/internal/seed"
	"github.com/quizdesk/quizdesk/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := newLogger(cfg)
	slog.SetDefault(log)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Error("db open failed", "err", err)
		os.Exit(1)
	}

	accountStore := account.NewSQLStore(dbh)
	catalogStore := catalog.NewSQLStore(dbh)
	sessionStore := session.NewSQLStore(dbh)

	accounts := account.NewService(accountStore, log)
	catalogSvc := catalog.NewService(catalogStore)
	engine := session.NewEngine(sessionStore, catalogStore, log)
	aggregator := results.NewAggregator(sessionStore, catalogStore, accountStore)

	tokens := authmw.NewAuthService(cfg.AuthHMACSecret, cfg.TokenTTL)
	gate := auth.NewGate(accountStore, tokens, log)

	if err := seed.EnsureAdmin(ctx, accountStore, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassHash, log); err != nil {
		log.Error("seed admin failed", "err", err)
		os.Exit(1)
	}
	if cfg.SeedSampleData {
		if err := seed.SampleData(ctx, accountStore, catalogStore, log); err != nil {
			log.Error("seed sample data failed", "err", err)
			os.Exit(1)
		}
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/api/auth/login", api.LoginHandler(gate))
	r.Post("/api/auth/register", api.RegisterHandler(accounts))

	// Protected API (JWT → subject+role in context → RBAC)
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
			er.With(rbac.Require("quiz:view-own")).
				Get("/quizzes", api.ExaminerQuizzesHandler(accountStore, catalogStore))
			er.With(rbac.Require("quiz:create")).
				Post("/create-quiz", api.CreateQuizHandler(accountStore, catalogStore))
			er.With(rbac.Require("quiz:create")).
				Put("/quizzes/{quizID}/status", api.UpdateQuizStatusHandler(accountStore, catalogStore))
			er.With(rbac.Require("quiz:create")).
				Delete("/quizzes/{quizID}", api.DeleteQuizHandler(accountStore, catalogStore))
			er.With(rbac.Require("results:view-own")).
				Get("/quizzes/{quizID}/results", api.QuizResultsHandler(accountStore, catalogStore, aggregator))
			er.With(rbac.Require("results:export")).
				Get("/quizzes/{quizID}/export-csv", api.ExportCSVHandler(accountStore, catalogStore, aggregator))
			er.With(rbac.Require("results:view-own")).
				Get("/quizzes/{quizID}/attempts/{attemptID}", api.AttemptDetailHandler(accountStore, catalogStore, aggregator))
		})

		pr.Route("/api/admin", func(ar chi.Router) {
			ar.Use(rbac.Require("admin:manage"))
			ar.Get("/users", api.ListUsersHandler(accounts))
			ar.Put("/users/{userID}/status", api.UpdateUserStatusHandler(accounts))
			ar.Get("/examiners", api.ListExaminersHandler(accounts))
			ar.Get("/pending-examiners", api.PendingExaminersHandler(accounts))
			ar.Post("/examiners/{examinerID}/approve", api.ApproveExaminerHandler(accounts))
			ar.Post("/examiners/{examinerID}/reject", api.RejectExaminerHandler(accounts))
			ar.Post("/users/{userID}/assign-examiner", api.AssignExaminerHandler(accounts))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Info("listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
