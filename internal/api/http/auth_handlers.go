package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizdesk/quizdesk/internal/account"
	"github.com/quizdesk/quizdesk/internal/auth"
)

// POST /api/auth/login  { "email": "...", "password": "..." }
func LoginHandler(gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeMessage(w, http.StatusBadRequest, "Email and password are required")
			return
		}
		cred, err := gate.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": cred.Token,
			"user": map[string]any{
				"id":    cred.Account.ID,
				"name":  cred.Account.Name,
				"email": cred.Account.Email,
				"role":  cred.Account.Role,
			},
		})
	}
}

// POST /api/auth/register  { "name": ..., "email": ..., "password": ..., "role": ... }
func RegisterHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
			writeMessage(w, http.StatusBadRequest, "Name, email, password and role are required")
			return
		}
		role, ok := account.ParseRole(req.Role)
		if !ok {
			writeMessage(w, http.StatusBadRequest, "Invalid role")
			return
		}
		a, err := accounts.Register(r.Context(), req.Name, req.Email, req.Password, role)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := map[string]any{"userId": a.ID}
		if a.Role == account.RoleExaminer {
			resp["message"] = "Registration successful. Your account requires admin approval before you can log in."
			resp["approvalStatus"] = a.ApprovalStatus
			resp["active"] = a.Active
		} else {
			resp["message"] = "User registered successfully"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
