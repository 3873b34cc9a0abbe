package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/account"
)

// GET /api/admin/users
func ListUsersHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := accounts.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := []map[string]any{}
		for _, u := range users {
			item := map[string]any{
				"id":     u.ID,
				"name":   u.Name,
				"email":  u.Email,
				"role":   u.Role,
				"active": u.Active,
			}
			if u.AssignedExaminerID != "" {
				if ex, err := accounts.Get(r.Context(), u.AssignedExaminerID); err == nil {
					item["assignedExaminer"] = map[string]any{"id": ex.ID, "name": ex.Name}
				}
			}
			out = append(out, item)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// PUT /api/admin/users/{userID}/status  { "active": bool }
func UpdateUserStatusHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Active *bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
			writeMessage(w, http.StatusBadRequest, "Active status is required")
			return
		}
		u, err := accounts.SetActive(r.Context(), chi.URLParam(r, "userID"), *req.Active)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "User status updated successfully",
			"userId":  u.ID,
			"active":  u.Active,
		})
	}
}

// GET /api/admin/examiners
func ListExaminersHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examiners, err := accounts.ListByRole(r.Context(), account.RoleExaminer)
		if err != nil {
			writeError(w, err)
			return
		}
		out := []map[string]any{}
		for _, e := range examiners {
			out = append(out, map[string]any{
				"id":     e.ID,
				"name":   e.Name,
				"email":  e.Email,
				"active": e.Active,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /api/admin/pending-examiners
func PendingExaminersHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := accounts.PendingExaminers(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := []map[string]any{}
		for _, e := range pending {
			out = append(out, map[string]any{
				"id":           e.ID,
				"name":         e.Name,
				"email":        e.Email,
				"registeredAt": e.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /api/admin/examiners/{examinerID}/approve
func ApproveExaminerHandler(accounts *account.Service) http.HandlerFunc {
	return approvalHandler(accounts, true)
}

// POST /api/admin/examiners/{examinerID}/reject
func RejectExaminerHandler(accounts *account.Service) http.HandlerFunc {
	return approvalHandler(accounts, false)
}

func approvalHandler(accounts *account.Service, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examinerID")
		var (
			e   account.Account
			err error
			msg string
		)
		if approve {
			e, err = accounts.ApproveExaminer(r.Context(), id)
			msg = "Examiner approved successfully"
		} else {
			e, err = accounts.RejectExaminer(r.Context(), id)
			msg = "Examiner rejected successfully"
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":    msg,
			"examinerId": e.ID,
			"name":       e.Name,
			"status":     e.ApprovalStatus,
			"active":     e.Active,
		})
	}
}

// POST /api/admin/users/{userID}/assign-examiner  { "examinerId": "..." }
func AssignExaminerHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExaminerID string `json:"examinerId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExaminerID == "" {
			writeMessage(w, http.StatusBadRequest, "Examiner ID is required")
			return
		}
		u, err := accounts.AssignExaminer(r.Context(), chi.URLParam(r, "userID"), req.ExaminerID)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := map[string]any{
			"message": "Examiner assigned successfully",
			"userId":  u.ID,
		}
		if ex, err := accounts.Get(r.Context(), u.AssignedExaminerID); err == nil {
			resp["assignedExaminer"] = map[string]any{"id": ex.ID, "name": ex.Name}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
