package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/R-Mend/RMend-Backend/internal/report"
	"github.com/R-Mend/RMend-Backend/internal/util"
)

// ListReportsNear returns the public feed around a point: every report within
// ten miles, sender fields stripped.
func (h *Handler) ListReportsNear(w http.ResponseWriter, r *http.Request) {
	latStr := strings.TrimSpace(r.URL.Query().Get("latitude"))
	lonStr := strings.TrimSpace(r.URL.Query().Get("longitude"))
	if latStr == "" || lonStr == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "latitude and longitude are required", nil)
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid latitude", nil)
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid longitude", nil)
		return
	}

	reports, err := h.reports.ListNear(r.Context(), lon, lat)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	features := make([]report.Feature, 0, len(reports))
	for _, rep := range reports {
		features = append(features, rep.PublicFeature())
	}

	WriteJSON(w, http.StatusOK, map[string]any{"type": "FeatureCollection", "features": features})
}

// CreateReport files a citizen report. Public, no account needed.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ReportType     string    `json:"report_type"`
		Location       []float64 `json:"location"`
		Details        string    `json:"details"`
		NearestAddress string    `json:"nearest_address"`
		SenderEmail    string    `json:"sender_email"`
		SenderName     string    `json:"sender_name"`
		SenderPhone    string    `json:"sender_phone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	typeID, err := uuid.Parse(strings.TrimSpace(payload.ReportType))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid report_type", nil)
		return
	}

	if len(payload.Location) != 2 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "location must be [longitude, latitude]", nil)
		return
	}

	if err := util.ValidateEmail(payload.SenderEmail); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	if err := util.RequireString(payload.SenderName, "sender_name"); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	created, err := h.reports.Create(r.Context(), report.CreateInput{
		ReportTypeID:   typeID,
		Longitude:      payload.Location[0],
		Latitude:       payload.Location[1],
		Details:        payload.Details,
		NearestAddress: payload.NearestAddress,
		SenderEmail:    payload.SenderEmail,
		SenderName:     payload.SenderName,
		SenderPhone:    payload.SenderPhone,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"report": created.AdminFeature()})
}

// ListAuthorityReports returns all reports of the authority, full fields.
func (h *Handler) ListAuthorityReports(w http.ResponseWriter, r *http.Request) {
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

	reports, err := h.reports.ListForAuthority(r.Context(), authorityID, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	features := make([]report.Feature, 0, len(reports))
	for _, rep := range reports {
		features = append(features, rep.AdminFeature())
	}

	WriteJSON(w, http.StatusOK, map[string]any{"type": "FeatureCollection", "features": features})
}

// UpdateReport changes triage fields only: priority and state.
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathUUID(r, "reportID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid report id", nil)
		return
	}

	_, actor, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var payload struct {
		Priority *bool  `json:"priority"`
		State    *int16 `json:"state"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	updated, err := h.reports.Update(r.Context(), reportID, report.UpdateInput{
		Priority: payload.Priority,
		State:    payload.State,
	}, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"report": updated.AdminFeature()})
}

// DeleteReport removes a report permanently.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathUUID(r, "reportID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid report id", nil)
		return
	}

	_, actor, err := h.actor(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.reports.Delete(r.Context(), reportID, actor); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
