package account

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

const accountCols = `id, name, email, secret, role, active, approval_status, assigned_examiner_id, created_at`

func (s *SQLStore) Create(ctx context.Context, a Account) (Account, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE email=$1`, a.Email).Scan(&exists)
	if err == nil {
		return Account{}, ErrEmailInUse
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Account{}, err
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.Name, a.Email, a.Secret, string(a.Role), a.Active,
		nullStr(string(a.ApprovalStatus)), nullStr(a.AssignedExaminerID), a.CreatedAt.Unix())
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (Account, error) {
	return s.getOne(ctx, `SELECT `+accountCols+` FROM accounts WHERE id=$1`, id)
}

func (s *SQLStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	// BINARY-exact match: no lower-casing on either side.
	return s.getOne(ctx, `SELECT `+accountCols+` FROM accounts WHERE email=$1`, email)
}

func (s *SQLStore) getOne(ctx context.Context, query, arg string) (Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (s *SQLStore) Update(ctx context.Context, a Account) (Account, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name=$1, email=$2, secret=$3, role=$4, active=$5, approval_status=$6, assigned_examiner_id=$7 WHERE id=$8`,
		a.Name, a.Email, a.Secret, string(a.Role), a.Active,
		nullStr(string(a.ApprovalStatus)), nullStr(a.AssignedExaminerID), a.ID)
	if err != nil {
		return Account{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Account, error) {
	return s.list(ctx, `SELECT `+accountCols+` FROM accounts ORDER BY created_at`)
}

func (s *SQLStore) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	return s.list(ctx, `SELECT `+accountCols+` FROM accounts WHERE role=$1 ORDER BY created_at`, string(role))
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (Account, error) {
	var (
		a         Account
		role      string
		status    sql.NullString
		examiner  sql.NullString
		createdAt int64
	)
	if err := r.Scan(&a.ID, &a.Name, &a.Email, &a.Secret, &role, &a.Active, &status, &examiner, &createdAt); err != nil {
		return Account{}, err
	}
	a.Role = Role(role)
	a.ApprovalStatus = ApprovalStatus(status.String)
	a.AssignedExaminerID = examiner.String
	a.CreatedAt = time.Unix(createdAt, 0)
	return a, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
