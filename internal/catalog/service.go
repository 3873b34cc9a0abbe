package catalog

import (
	"context"

	"github.com/quizdesk/quizdesk/internal/account"
)

// Service layers visibility rules over the store. Ownership checks stay
// with the HTTP handlers.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

func (s *Service) Store() Store { return s.store }

// ListVisible returns the quizzes a taker may see: active quizzes only,
// scoped to the user's assigned examiner when one is set.
func (s *Service) ListVisible(ctx context.Context, user account.Account) ([]Quiz, error) {
	if user.AssignedExaminerID != "" {
		return s.store.ListActiveByExaminer(ctx, user.AssignedExaminerID)
	}
	return s.store.ListActive(ctx)
}
