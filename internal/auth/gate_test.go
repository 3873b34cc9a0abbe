package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quizdesk/quizdesk/internal/account"
	"github.com/quizdesk/quizdesk/internal/auth"
	authmw "github.com/quizdesk/quizdesk/internal/auth/middleware"
)

func newGate(t *testing.T) (*auth.Gate, *account.Service, *authmw.AuthService) {
	t.Helper()
	store := account.NewInMemoryStore()
	tokens := authmw.NewAuthService("test-secret", time.Hour)
	return auth.NewGate(store, tokens, nil), account.NewService(store, nil), tokens
}

func TestAuthenticateUser(t *testing.T) {
	gate, accounts, tokens := newGate(t)
	ctx := context.Background()
	if _, err := accounts.Register(ctx, "Alice", "alice@example.com", "pw", account.RoleUser); err != nil {
		t.Fatalf("register: %v", err)
	}

	cred, err := gate.Authenticate(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if cred.Token == "" {
		t.Fatalf("expected a token")
	}
	claims, err := tokens.Parse(cred.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "alice@example.com" || claims.Role != "user" {
		t.Fatalf("unexpected claims: sub=%s role=%s", claims.Subject, claims.Role)
	}
}

func TestAuthenticateWrongSecret(t *testing.T) {
	gate, accounts, _ := newGate(t)
	ctx := context.Background()
	accounts.Register(ctx, "Alice", "alice@example.com", "pw", account.RoleUser)

	if _, err := gate.Authenticate(ctx, "alice@example.com", "nope"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	gate, _, _ := newGate(t)
	if _, err := gate.Authenticate(context.Background(), "ghost@example.com", "pw"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestExaminerLoginLifecycle(t *testing.T) {
	gate, accounts, _ := newGate(t)
	ctx := context.Background()
	e, err := accounts.Register(ctx, "Eve", "eve@example.com", "pw", account.RoleExaminer)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Before approval the gate refuses with the pending status.
	_, err = gate.Authenticate(ctx, "eve@example.com", "pw")
	var notApproved *auth.NotApprovedError
	if !errors.As(err, &notApproved) {
		t.Fatalf("expected NotApprovedError, got %v", err)
	}
	if notApproved.Status != account.ApprovalPending {
		t.Fatalf("expected pending, got %s", notApproved.Status)
	}

	if _, err := accounts.ApproveExaminer(ctx, e.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	cred, err := gate.Authenticate(ctx, "eve@example.com", "pw")
	if err != nil {
		t.Fatalf("authenticate after approval: %v", err)
	}
	if cred.Account.Role != account.RoleExaminer {
		t.Fatalf("expected examiner role, got %s", cred.Account.Role)
	}

	if _, err := accounts.RejectExaminer(ctx, e.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err = gate.Authenticate(ctx, "eve@example.com", "pw")
	if !errors.As(err, &notApproved) || notApproved.Status != account.ApprovalRejected {
		t.Fatalf("expected rejected NotApprovedError, got %v", err)
	}
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	gate, accounts, _ := newGate(t)
	ctx := context.Background()
	u, _ := accounts.Register(ctx, "Alice", "alice@example.com", "pw", account.RoleUser)
	if _, err := accounts.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("set active: %v", err)
	}

	if _, err := gate.Authenticate(ctx, "alice@example.com", "pw"); !errors.Is(err, auth.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestAuthenticateBcryptSecret(t *testing.T) {
	store := account.NewInMemoryStore()
	tokens := authmw.NewAuthService("test-secret", time.Hour)
	gate := auth.NewGate(store, tokens, nil)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if _, err := store.Create(ctx, account.Account{
		Name:   "Admin",
		Email:  "admin@example.com",
		Secret: string(hash),
		Role:   account.RoleAdmin,
		Active: true,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := gate.Authenticate(ctx, "admin@example.com", "admin-pass"); err != nil {
		t.Fatalf("hashed secret login failed: %v", err)
	}
	if _, err := gate.Authenticate(ctx, "admin@example.com", string(hash)); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("raw hash must not authenticate, got %v", err)
	}
}
