package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizdesk/quizdesk/internal/account"
	"github.com/quizdesk/quizdesk/internal/auth"
	"github.com/quizdesk/quizdesk/internal/catalog"
	"github.com/quizdesk/quizdesk/internal/rbac"
	"github.com/quizdesk/quizdesk/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps domain errors onto HTTP statuses. Everything in the
// taxonomy is a caller-recoverable outcome; only unknowns become 500s.
func writeError(w http.ResponseWriter, err error) {
	var notApproved *auth.NotApprovedError
	switch {
	case errors.As(err, &notApproved):
		writeJSON(w, http.StatusForbidden, map[string]string{
			"message":        notApprovedMessage(notApproved.Status),
			"approvalStatus": string(notApproved.Status),
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrDisabled):
		writeMessage(w, http.StatusForbidden, "User account is disabled")
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, catalog.ErrQuizNotFound),
		errors.Is(err, catalog.ErrQuestionNotFound),
		errors.Is(err, session.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrEmailInUse),
		errors.Is(err, account.ErrNotAnExaminer),
		errors.Is(err, account.ErrRoleMismatch),
		errors.Is(err, session.ErrAlreadyCompleted):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrQuizInactive):
		writeMessage(w, http.StatusForbidden, "Quiz is not active")
	case errors.Is(err, session.ErrUnknownQuestion),
		errors.Is(err, session.ErrUnknownOption):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func notApprovedMessage(status account.ApprovalStatus) string {
	if status == account.ApprovalRejected {
		return "Your examiner account was not approved by the administrator."
	}
	return "Your examiner account is pending approval by an administrator."
}

// currentAccount resolves the authenticated subject (email claim) to
// its account.
func currentAccount(r *http.Request, accounts account.Store) (account.Account, error) {
	sub := rbac.SubjectFromContext(r.Context())
	if sub == "" {
		return account.Account{}, account.ErrNotFound
	}
	return accounts.GetByEmail(r.Context(), sub)
}
