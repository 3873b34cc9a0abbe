package account

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleExaminer Role = "examiner"
	RoleUser     Role = "user"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleExaminer, RoleUser:
		return Role(s), true
	}
	return "", false
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Account is a registered identity. ApprovalStatus is set only for
// examiners; AssignedExaminerID is set only for users an admin has
// scoped to a single examiner.
type Account struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Secret             string         `json:"-"`
	Role               Role           `json:"role"`
	Active             bool           `json:"active"`
	ApprovalStatus     ApprovalStatus `json:"approvalStatus,omitempty"`
	AssignedExaminerID string         `json:"assignedExaminerId,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// New applies the creation invariants: examiners start pending and
// inactive, everyone else is active with no approval status.
func New(name, email, secret string, role Role) Account {
	a := Account{
		Name:      name,
		Email:     email,
		Secret:    secret,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if role == RoleExaminer {
		a.ApprovalStatus = ApprovalPending
		a.Active = false
	}
	return a
}
