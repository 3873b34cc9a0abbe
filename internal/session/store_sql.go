package session

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

const sessionCols = `id, user_id, quiz_id, started_at, completed_at, score, completed`

func (s *SQLStore) StartAttempt(ctx context.Context, userID, quizID string) (Session, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, false, err
	}
	defer tx.Rollback()

	var completed int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM sessions WHERE user_id=$1 AND quiz_id=$2 AND completed=$3`,
		userID, quizID, true).Scan(&completed)
	if err == nil {
		return Session{}, false, ErrAlreadyCompleted
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE user_id=$1 AND quiz_id=$2 AND completed=$3`,
		userID, quizID, false)
	existing, err := scanSession(row)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return Session{}, false, err
		}
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, err
	}

	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		QuizID:    quizID,
		StartedAt: time.Now(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, quiz_id, started_at, completed) VALUES ($1,$2,$3,$4,$5)`,
		sess.ID, sess.UserID, sess.QuizID, sess.StartedAt.Unix(), false)
	if err != nil {
		return Session{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id=$1`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	answers, err := s.loadAnswers(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.Answers = answers
	return sess, nil
}

func (s *SQLStore) GetActive(ctx context.Context, userID, quizID string) (Session, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE user_id=$1 AND quiz_id=$2 AND completed=$3`,
		userID, quizID, false)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

func (s *SQLStore) Complete(ctx context.Context, sessionID string, answers []Answer, score int, completedAt time.Time) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, err
	}
	defer tx.Rollback()

	// The open check and the seal share the transaction: a racing
	// second submit observes completed=true and is rejected.
	var completed bool
	err = tx.QueryRowContext(ctx, `SELECT completed FROM sessions WHERE id=$1`, sessionID).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	if completed {
		return Session{}, ErrAlreadyCompleted
	}

	for i, a := range answers {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO answers (id, session_id, question_id, option_id, text_response, correct, ord)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			a.ID, sessionID, a.QuestionID, nullStr(a.OptionID), nullStr(a.TextResponse), a.Correct, i)
		if err != nil {
			return Session{}, err
		}
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET completed=$1, score=$2, completed_at=$3 WHERE id=$4`,
		true, score, completedAt.Unix(), sessionID)
	if err != nil {
		return Session{}, err
	}
	if err := tx.Commit(); err != nil {
		return Session{}, err
	}
	return s.Get(ctx, sessionID)
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	return s.list(ctx, `SELECT `+sessionCols+` FROM sessions WHERE user_id=$1 ORDER BY started_at`, userID)
}

func (s *SQLStore) ListByQuiz(ctx context.Context, quizID string) ([]Session, error) {
	return s.list(ctx, `SELECT `+sessionCols+` FROM sessions WHERE quiz_id=$1 ORDER BY started_at`, quizID)
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SQLStore) loadAnswers(ctx context.Context, sessionID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, question_id, option_id, text_response, correct, ord
		 FROM answers WHERE session_id=$1 ORDER BY ord`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Answer{}
	for rows.Next() {
		var (
			a      Answer
			option sql.NullString
			text   sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &option, &text, &a.Correct, &a.Ord); err != nil {
			return nil, err
		}
		a.OptionID = option.String
		a.TextResponse = text.String
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (Session, error) {
	var (
		sess        Session
		startedAt   int64
		completedAt sql.NullInt64
		score       sql.NullInt64
	)
	if err := r.Scan(&sess.ID, &sess.UserID, &sess.QuizID, &startedAt, &completedAt, &score, &sess.Completed); err != nil {
		return Session{}, err
	}
	sess.StartedAt = time.Unix(startedAt, 0)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		sess.CompletedAt = &t
	}
	if score.Valid {
		v := int(score.Int64)
		sess.Score = &v
	}
	return sess, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
