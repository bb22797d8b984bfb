package http

import (
	"encoding/json"
	"net/http"

	"github.com/R-Mend/RMend-Backend/internal/authority"
)

// GetAuthority returns the full authority record, access code included.
func (h *Handler) GetAuthority(w http.ResponseWriter, r *http.Request) {
	authorityID, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid authority id", nil)
		return
	}

	_, actor, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	auth, err := h.authorities.Get(r.Context(), authorityID, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"authority": auth})
}

// UpdateAuthority changes the contact fields of the authority.
func (h *Handler) UpdateAuthority(w http.ResponseWriter, r *http.Request) {
	authorityID, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid authority id", nil)
		return
	}

	_, actor, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var payload struct {
		Name          *string `json:"name"`
		AuthorityType *string `json:"authority_type"`
		Address       *string `json:"address"`
		PhoneNumber   *string `json:"phone_number"`
		Email         *string `json:"email"`
		WebsiteURL    *string `json:"website_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	updated, err := h.authorities.Update(r.Context(), authorityID, authority.UpdateInput{
		Name:          payload.Name,
		AuthorityType: payload.AuthorityType,
		Address:       payload.Address,
		PhoneNumber:   payload.PhoneNumber,
		Email:         payload.Email,
		WebsiteURL:    payload.WebsiteURL,
	}, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"authority": updated})
}

// RotateAccessCode replaces the authority join code.
func (h *Handler) RotateAccessCode(w http.ResponseWriter, r *http.Request) {
	authorityID, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid authority id", nil)
		return
	}

	_, actor, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := h.authorities.RotateAccessCode(r.Context(), authorityID, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"access_code": updated.AccessCode})
}

// ListEmployeeRequests returns the pending join requests for the authority.
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	authorityID, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid authority id", nil)
		return
	}

	_, actor, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	requests, err := h.accounts.ListMembershipRequests(r.Context(), authorityID, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"employee_requests": requests})
}

// ResolveEmployeeRequest accepts or rejects a join request. Either way the
// request row is gone afterwards.
func (h *Handler) ResolveEmployeeRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid request id", nil)
		return
	}

	_, actor, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var payload struct {
		IsAccepted bool `json:"is_accepted"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	if err := h.accounts.ResolveMembershipRequest(r.Context(), requestID, payload.IsAccepted, actor); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"resolved": true, "accepted": payload.IsAccepted})
}
