package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Durgesh2022/yoga-app/internal/user"
)

func handleBanner() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{
			"message": "Celestials Healing API",
		})
	}
}

type statusCheckRequest struct {
	ClientName string `json:"client_name"`
}

func handleCreateStatusCheck(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientName == "" {
			writeError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}

		check, err := deps.StatusChecks.Insert(r.Context(), req.ClientName)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, check)
	}
}

func handleListStatusChecks(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				limit = i
			}
		}

		checks, err := deps.StatusChecks.List(r.Context(), limit)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, checks)
	}
}

type signupRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	TimeOfBirth string `json:"time_of_birth"`
	Location    string `json:"location"`
}

func handleSignup(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		profile, err := deps.Users.Signup(r.Context(), user.SignupRequest{
			FullName:    req.FullName,
			Email:       req.Email,
			Phone:       req.Phone,
			Password:    req.Password,
			Gender:      req.Gender,
			DateOfBirth: req.DateOfBirth,
			TimeOfBirth: req.TimeOfBirth,
			Location:    req.Location,
		})
		if err != nil {
			switch err {
			case user.ErrEmailTaken, user.ErrPhoneTaken:
				writeDomainError(w, r, err)
			default:
				// Validation failures carry a user-facing message.
				writeError(w, r, http.StatusBadRequest, err.Error())
			}
			return
		}

		writeJSON(w, r, http.StatusCreated, map[string]any{
			"success": true,
			"user":    profile,
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleLogin(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		profile, err := deps.Users.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"success": true,
			"user":    profile,
		})
	}
}

func handleGetUser(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := deps.Users.Get(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, profile)
	}
}
