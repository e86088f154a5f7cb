package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Durgesh2022/yoga-app/internal/admin"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleAdminLogin(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		token, err := deps.AdminAuth.Login(req.Email, req.Password)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"success": true,
			"token":   token,
		})
	}
}

func handleAdminStats(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Admin.DashboardStats(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, stats)
	}
}

func handleLedgerConsistency(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := deps.Admin.LedgerConsistency(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, report)
	}
}

func handlePurgeUser(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Admin.PurgeUser(r.Context(), chi.URLParam(r, "user_id")); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"success": true})
	}
}

func handleListAstrologers(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := deps.Admin.ListAstrologers(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"astrologers": list})
	}
}

func handleCreateAstrologer(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeOrReject[admin.Astrologer](w, r)
		if !ok {
			return
		}

		a, err := deps.Admin.CreateAstrologer(r.Context(), req)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, r, http.StatusCreated, a)
	}
}

func handleUpdateAstrologer(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeOrReject[admin.Astrologer](w, r)
		if !ok {
			return
		}
		req.ID = chi.URLParam(r, "astrologer_id")

		a, err := deps.Admin.UpdateAstrologer(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, a)
	}
}

func handleDeleteAstrologer(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Admin.DeleteAstrologer(r.Context(), chi.URLParam(r, "astrologer_id")); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"success": true})
	}
}
