package http

import (
	"encoding/json"
	"net/http"
	"strings"

	httpmiddleware "github.com/R-Mend/RMend-Backend/internal/http/middleware"
)

// Login authenticates by email and password and issues the token pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "email and password are required", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
		"user_id":       result.User.ID,
		"user_name":     result.User.Username,
		"email":         result.User.Email,
		"phone_number":  result.User.PhoneNumber,
		"auth_code":     result.User.AuthCode,
	})
}

// Refresh exchanges a valid refresh token for a new pair. Single use.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	if strings.TrimSpace(payload.RefreshToken) == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "refresh_token is required", nil)
		return
	}

	result, err := h.authService.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
	})
}

// Logout revokes the refresh token and denylists the access token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := httpmiddleware.GetClaims(r.Context())
	if claims == nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "missing token", nil)
		return
	}

	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	// body is optional; without it only the access token is revoked
	_ = json.NewDecoder(r.Body).Decode(&payload)

	if err := h.authService.Logout(r.Context(), claims, payload.RefreshToken); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"logged_out": true})
}
