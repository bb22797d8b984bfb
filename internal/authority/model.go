package authority

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("authority not found")
	ErrNameTaken  = errors.New("authority name already taken")
	ErrAccessCode = errors.New("could not generate a unique access code")
)

// Authority is a governing jurisdiction: a boundary polygon, contact data and
// the short rotating code users quote when asking to join as staff.
type Authority struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Boundary      json.RawMessage `json:"boundary"`
	AuthorityType string          `json:"authority_type"`
	Address       string          `json:"address"`
	PhoneNumber   string          `json:"phone_number"`
	Email         string          `json:"email"`
	WebsiteURL    string          `json:"website_url"`
	AccessCode    string          `json:"access_code,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OwningAuthority lets an authority act as its own scoped resource.
func (a Authority) OwningAuthority() uuid.UUID {
	return a.ID
}

// CreateInput carries the fields needed to register a jurisdiction.
type CreateInput struct {
	Name          string
	Boundary      json.RawMessage
	AuthorityType string
	Address       string
	PhoneNumber   string
	Email         string
	WebsiteURL    string
	AccessCode    string
}

// UpdateInput carries the owner-editable contact fields. Nil means unchanged.
type UpdateInput struct {
	Name          *string
	AuthorityType *string
	Address       *string
	PhoneNumber   *string
	Email         *string
	WebsiteURL    *string
}
