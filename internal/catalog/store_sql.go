package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, title, description, time_limit_min, active, examiner_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.Title, q.Description, q.TimeLimitMin, q.Active, q.ExaminerID, q.CreatedAt.Unix())
	if err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, time_limit_min, active, examiner_id, created_at FROM quizzes WHERE id=$1`, id)
	q, err := scanQuiz(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, ErrQuizNotFound
	}
	if err != nil {
		return Quiz{}, err
	}

	qrows, err := s.db.QueryContext(ctx,
		`SELECT id, quiz_id, text, points, ord FROM questions WHERE quiz_id=$1 ORDER BY ord`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer qrows.Close()
	byID := map[string]int{}
	for qrows.Next() {
		var qu Question
		if err := qrows.Scan(&qu.ID, &qu.QuizID, &qu.Text, &qu.Points, &qu.Ord); err != nil {
			return Quiz{}, err
		}
		byID[qu.ID] = len(q.Questions)
		q.Questions = append(q.Questions, qu)
	}
	if err := qrows.Err(); err != nil {
		return Quiz{}, err
	}

	orows, err := s.db.QueryContext(ctx,
		`SELECT o.id, o.question_id, o.text, o.is_correct, o.ord
		 FROM options o JOIN questions qn ON qn.id = o.question_id
		 WHERE qn.quiz_id=$1 ORDER BY o.ord`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer orows.Close()
	for orows.Next() {
		var o Option
		if err := orows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect, &o.Ord); err != nil {
			return Quiz{}, err
		}
		if i, ok := byID[o.QuestionID]; ok {
			q.Questions[i].Options = append(q.Questions[i].Options, o)
		}
	}
	if err := orows.Err(); err != nil {
		return Quiz{}, err
	}
	q.QuestionCount = len(q.Questions)
	return q, nil
}

func (s *SQLStore) AddQuestion(ctx context.Context, quizID string, q Question) (Question, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM quizzes WHERE id=$1`, quizID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrQuizNotFound
		}
		return Question{}, err
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.QuizID = quizID
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ord)+1, 0) FROM questions WHERE quiz_id=$1`, quizID).Scan(&q.Ord); err != nil {
		return Question{}, err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (id, quiz_id, text, points, ord) VALUES ($1,$2,$3,$4,$5)`,
		q.ID, q.QuizID, q.Text, q.Points, q.Ord)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) AddOption(ctx context.Context, questionID string, o Option) (Option, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM questions WHERE id=$1`, questionID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Option{}, ErrQuestionNotFound
		}
		return Option{}, err
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.QuestionID = questionID
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ord)+1, 0) FROM options WHERE question_id=$1`, questionID).Scan(&o.Ord); err != nil {
		return Option{}, err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO options (id, question_id, text, is_correct, ord) VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.QuestionID, o.Text, o.IsCorrect, o.Ord)
	if err != nil {
		return Option{}, err
	}
	return o, nil
}

func (s *SQLStore) SetQuizActive(ctx context.Context, id string, active bool) (Quiz, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE quizzes SET active=$1 WHERE id=$2`, active, id)
	if err != nil {
		return Quiz{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Quiz{}, ErrQuizNotFound
	}
	return s.GetQuiz(ctx, id)
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

const quizListQuery = `
SELECT q.id, q.title, q.description, q.time_limit_min, q.active, q.examiner_id, q.created_at,
       (SELECT COUNT(*) FROM questions qn WHERE qn.quiz_id = q.id)
FROM quizzes q`

func (s *SQLStore) ListActive(ctx context.Context) ([]Quiz, error) {
	return s.list(ctx, quizListQuery+` WHERE q.active=$1 ORDER BY q.created_at`, true)
}

func (s *SQLStore) ListActiveByExaminer(ctx context.Context, examinerID string) ([]Quiz, error) {
	return s.list(ctx, quizListQuery+` WHERE q.active=$1 AND q.examiner_id=$2 ORDER BY q.created_at`, true, examinerID)
}

func (s *SQLStore) ListByExaminer(ctx context.Context, examinerID string) ([]Quiz, error) {
	return s.list(ctx, quizListQuery+` WHERE q.examiner_id=$1 ORDER BY q.created_at`, examinerID)
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		var (
			q         Quiz
			createdAt int64
		)
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.TimeLimitMin, &q.Active, &q.ExaminerID, &createdAt, &q.QuestionCount); err != nil {
			return nil, err
		}
		q.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, q)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(r rowScanner) (Quiz, error) {
	var (
		q         Quiz
		createdAt int64
	)
	if err := r.Scan(&q.ID, &q.Title, &q.Description, &q.TimeLimitMin, &q.Active, &q.ExaminerID, &createdAt); err != nil {
		return Quiz{}, err
	}
	q.CreatedAt = time.Unix(createdAt, 0)
	return q, nil
}
