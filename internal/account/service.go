package account

import (
	"context"
	"log/slog"
)

// Service owns the admission state machine: examiner approval drives the
// activation flag; non-examiners are active from creation.
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log}
}

func (s *Service) Register(ctx context.Context, name, email, secret string, role Role) (Account, error) {
	a, err := s.store.Create(ctx, New(name, email, secret, role))
	if err != nil {
		return Account{}, err
	}
	s.log.Info("account registered", "id", a.ID, "email", a.Email, "role", a.Role)
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return s.store.GetByEmail(ctx, email)
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.store.List(ctx)
}

func (s *Service) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	return s.store.ListByRole(ctx, role)
}

func (s *Service) PendingExaminers(ctx context.Context) ([]Account, error) {
	examiners, err := s.store.ListByRole(ctx, RoleExaminer)
	if err != nil {
		return nil, err
	}
	out := []Account{}
	for _, e := range examiners {
		if e.ApprovalStatus == ApprovalPending {
			out = append(out, e)
		}
	}
	return out, nil
}

// ApproveExaminer moves an examiner to approved and activates the
// account. Re-approving a rejected examiner runs the same transition.
func (s *Service) ApproveExaminer(ctx context.Context, id string) (Account, error) {
	return s.setApproval(ctx, id, ApprovalApproved, true)
}

func (s *Service) RejectExaminer(ctx context.Context, id string) (Account, error) {
	return s.setApproval(ctx, id, ApprovalRejected, false)
}

func (s *Service) setApproval(ctx context.Context, id string, status ApprovalStatus, active bool) (Account, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if a.Role != RoleExaminer {
		return Account{}, ErrNotAnExaminer
	}
	a.ApprovalStatus = status
	a.Active = active
	a, err = s.store.Update(ctx, a)
	if err != nil {
		return Account{}, err
	}
	s.log.Info("examiner approval updated", "id", a.ID, "status", a.ApprovalStatus, "active", a.Active)
	return a, nil
}

// SetActive is the administrative override; it does not touch approval.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (Account, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	a.Active = active
	a, err = s.store.Update(ctx, a)
	if err != nil {
		return Account{}, err
	}
	s.log.Info("account activation updated", "id", a.ID, "active", a.Active)
	return a, nil
}

func (s *Service) AssignExaminer(ctx context.Context, userID, examinerID string) (Account, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return Account{}, err
	}
	examiner, err := s.store.GetByID(ctx, examinerID)
	if err != nil {
		return Account{}, err
	}
	if examiner.Role != RoleExaminer {
		return Account{}, ErrRoleMismatch
	}
	user.AssignedExaminerID = examiner.ID
	user, err = s.store.Update(ctx, user)
	if err != nil {
		return Account{}, err
	}
	s.log.Info("examiner assigned", "user", user.ID, "examiner", examiner.ID)
	return user, nil
}
