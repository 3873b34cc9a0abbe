package account

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrEmailInUse    = errors.New("email already in use")
	ErrNotAnExaminer = errors.New("account is not an examiner")
	ErrRoleMismatch  = errors.New("assigned account must have examiner role")
)

type Store interface {
	Create(ctx context.Context, a Account) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	// GetByEmail matches exactly and case-sensitively, as stored.
	GetByEmail(ctx context.Context, email string) (Account, error)
	Update(ctx context.Context, a Account) (Account, error)
	List(ctx context.Context) ([]Account, error)
	ListByRole(ctx context.Context, role Role) ([]Account, error)
}
