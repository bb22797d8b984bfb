package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ListBaseIssueGroups returns the global template catalog.
func (h *Handler) ListBaseIssueGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.ListBase(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"issue_groups": groups})
}

// ListIssueGroupsByLocation returns the catalog of the authority whose
// jurisdiction matches the given point. Outside every jurisdiction the list
// is empty, not an error.
func (h *Handler) ListIssueGroupsByLocation(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Location []float64 `json:"location"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	if len(payload.Location) != 2 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "location must be [longitude, latitude]", nil)
		return
	}

	groups, err := h.catalog.ListByLocation(r.Context(), payload.Location[0], payload.Location[1])
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"issue_groups": groups})
}

// ListAuthorityIssueGroups returns the authority's cloned catalog.
func (h *Handler) ListAuthorityIssueGroups(w http.ResponseWriter, r *http.Request) {
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

	groups, err := h.catalog.ListByAuthority(r.Context(), authorityID, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"issue_groups": groups})
}

// CloneIssueGroup copies a template group into the authority's catalog.
func (h *Handler) CloneIssueGroup(w http.ResponseWriter, r *http.Request) {
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
		GroupName string `json:"group_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	name := strings.TrimSpace(payload.GroupName)
	if name == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "group_name is required", nil)
		return
	}

	group, err := h.catalog.CloneGroup(r.Context(), authorityID, name, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"issue_group": group})
}

// DeleteIssueGroup removes a cloned group and its types.
func (h *Handler) DeleteIssueGroup(w http.ResponseWriter, r *http.Request) {
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
		GroupName string `json:"group_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	name := strings.TrimSpace(payload.GroupName)
	if name == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "group_name is required", nil)
		return
	}

	if err := h.catalog.DeleteGroup(r.Context(), authorityID, name, actor); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// CloneIssueType copies a template type into a cloned group of the authority.
func (h *Handler) CloneIssueType(w http.ResponseWriter, r *http.Request) {
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
		IssueGroupName string `json:"issue_group_name"`
		TypeName       string `json:"type_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	groupName := strings.TrimSpace(payload.IssueGroupName)
	typeName := strings.TrimSpace(payload.TypeName)
	if groupName == "" || typeName == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "issue_group_name and type_name are required", nil)
		return
	}

	issueType, err := h.catalog.CloneType(r.Context(), authorityID, groupName, typeName, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"issue_type": issueType})
}

// DeleteIssueType removes a cloned type from the authority's catalog.
func (h *Handler) DeleteIssueType(w http.ResponseWriter, r *http.Request) {
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
		TypeName string `json:"type_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	name := strings.TrimSpace(payload.TypeName)
	if name == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "type_name is required", nil)
		return
	}

	if err := h.catalog.DeleteType(r.Context(), authorityID, name, actor); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
