package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/R-Mend/RMend-Backend/internal/account"
	"github.com/R-Mend/RMend-Backend/internal/util"
)

// Register creates an account and already signs the user in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string `json:"email"`
		Username    string `json:"username"`
		Password    string `json:"password"`
		PhoneNumber string `json:"phone"`
		AuthCode    string `json:"auth_code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	if err := util.ValidateEmail(payload.Email); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	if err := util.ValidatePassword(payload.Password); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	user, err := h.accounts.Register(r.Context(), payload.Email, payload.Username, payload.Password, payload.PhoneNumber, payload.AuthCode)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.authService.IssueForUser(r.Context(), user)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"id":            user.ID,
		"email":         user.Email,
		"username":      user.Username,
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
	})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// UpdateMe applies self-service profile changes.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, _, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var payload struct {
		Username    *string `json:"username"`
		PhoneNumber *string `json:"phone_number"`
		AuthCode    *string `json:"auth_code"`
		Password    *string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	if payload.Password != nil {
		if err := util.ValidatePassword(*payload.Password); err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), user.ID, account.UpdateUserInput{
		Username:    payload.Username,
		PhoneNumber: payload.PhoneNumber,
		AuthCode:    payload.AuthCode,
	}, payload.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": updated})
}

// CreateEmployeeRequest asks to join the authority matching the access code.
func (h *Handler) CreateEmployeeRequest(w http.ResponseWriter, r *http.Request) {
	user, _, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var payload struct {
		AuthorityAccessCode string `json:"authority_access_code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	code := strings.TrimSpace(payload.AuthorityAccessCode)
	if code == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "authority_access_code is required", nil)
		return
	}

	request, err := h.accounts.RequestMembership(r.Context(), user.ID, code)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"employee_request": request})
}
