package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/quizdesk/quizdesk/internal/account"
	authmw "github.com/quizdesk/quizdesk/internal/auth/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDisabled           = errors.New("account is disabled")
)

// NotApprovedError is returned for examiner logins before approval; it
// carries the status so callers can distinguish pending from rejected.
type NotApprovedError struct {
	Status account.ApprovalStatus
}

func (e *NotApprovedError) Error() string {
	return fmt.Sprintf("examiner account not approved: %s", e.Status)
}

// Credential is the outcome of a successful authentication.
type Credential struct {
	Token   string
	Account account.Account
}

// Gate decides at login time whether an account may receive a
// credential. It is read-only: no account state changes here.
type Gate struct {
	accounts account.Store
	tokens   *authmw.AuthService
	log      *slog.Logger
}

func NewGate(accounts account.Store, tokens *authmw.AuthService, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{accounts: accounts, tokens: tokens, log: log}
}

// Authenticate looks the account up by exact email and checks the
// secret, approval status and activation flag, in that order.
func (g *Gate) Authenticate(ctx context.Context, email, secret string) (Credential, error) {
	a, err := g.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			g.log.Warn("login failed: unknown email", "email", email)
			return Credential{}, ErrInvalidCredentials
		}
		return Credential{}, err
	}

	if !secretMatches(a.Secret, secret) {
		g.log.Warn("login failed: bad secret", "email", email)
		return Credential{}, ErrInvalidCredentials
	}

	if a.Role == account.RoleExaminer {
		switch a.ApprovalStatus {
		case account.ApprovalPending, account.ApprovalRejected:
			g.log.Warn("login failed: examiner not approved", "email", email, "status", a.ApprovalStatus)
			return Credential{}, &NotApprovedError{Status: a.ApprovalStatus}
		}
	}

	if !a.Active {
		g.log.Warn("login failed: account disabled", "email", email)
		return Credential{}, ErrDisabled
	}

	tok, err := g.tokens.IssueJWT(a.Email, string(a.Role))
	if err != nil {
		return Credential{}, err
	}
	g.log.Info("login succeeded", "email", a.Email, "role", a.Role)
	return Credential{Token: tok, Account: a}, nil
}

// Stored secrets are compared verbatim unless they are bcrypt hashes
// (the seeded admin).
func secretMatches(stored, presented string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
	}
	return stored == presented
}
