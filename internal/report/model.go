package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("report not found")
	ErrOutOfRange   = errors.New("report location is outside every jurisdiction")
	ErrInvalidState = errors.New("invalid report state")
)

// Report lifecycle states.
const (
	StateReported  int16 = 1
	StateReviewing int16 = 2
	StateCompleted int16 = 3
)

// ValidState reports whether v is one of the three lifecycle states. Movement
// between valid states is unconstrained.
func ValidState(v int16) bool {
	return v == StateReported || v == StateReviewing || v == StateCompleted
}

// StateName returns the display name used in API payloads.
func StateName(v int16) string {
	switch v {
	case StateReported:
		return "Reported"
	case StateReviewing:
		return "Reviewing"
	case StateCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Report is a citizen-submitted geolocated issue. Intake fields are set once
// at creation; only Priority and State change afterwards, and only by staff of
// the owning authority.
type Report struct {
	ID             uuid.UUID  `json:"id"`
	AuthorityID    uuid.UUID  `json:"authority_id"`
	ReportTypeID   *uuid.UUID `json:"report_type_id,omitempty"`
	ReportTypeName *string    `json:"report_type,omitempty"`
	Longitude      float64    `json:"longitude"`
	Latitude       float64    `json:"latitude"`
	Details        string     `json:"details"`
	NearestAddress string     `json:"nearest_address"`
	SenderEmail    string     `json:"sender_email"`
	SenderName     string     `json:"sender_name"`
	SenderPhone    string     `json:"sender_phone"`
	Priority       bool       `json:"priority"`
	State          int16      `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
}

// OwningAuthority scopes the report to the authority it was routed to.
func (r Report) OwningAuthority() uuid.UUID {
	return r.AuthorityID
}

// Feature is a GeoJSON-style rendering of a report.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a GeoJSON point, longitude first.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// PublicFeature renders the citizen-visible subset: no sender PII, no
// priority flag.
func (r Report) PublicFeature() Feature {
	return Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "Point", Coordinates: [2]float64{r.Longitude, r.Latitude}},
		Properties: map[string]any{
			"id":              r.ID,
			"report_type":     r.ReportTypeName,
			"details":         r.Details,
			"nearest_address": r.NearestAddress,
			"state":           StateName(r.State),
			"date_created":    r.CreatedAt,
		},
	}
}

// AdminFeature renders the full staff view, sender fields included.
func (r Report) AdminFeature() Feature {
	return Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "Point", Coordinates: [2]float64{r.Longitude, r.Latitude}},
		Properties: map[string]any{
			"id":              r.ID,
			"authority_id":    r.AuthorityID,
			"report_type_id":  r.ReportTypeID,
			"report_type":     r.ReportTypeName,
			"details":         r.Details,
			"nearest_address": r.NearestAddress,
			"sender_email":    r.SenderEmail,
			"sender_name":     r.SenderName,
			"sender_phone":    r.SenderPhone,
			"priority":        r.Priority,
			"state":           r.State,
			"date_created":    r.CreatedAt,
		},
	}
}

// CreateInput carries the immutable intake fields.
type CreateInput struct {
	ReportTypeID   uuid.UUID
	Longitude      float64
	Latitude       float64
	Details        string
	NearestAddress string
	SenderEmail    string
	SenderName     string
	SenderPhone    string
}

// UpdateInput carries the only two triage fields staff may change.
type UpdateInput struct {
	Priority *bool
	State    *int16
}
