package account

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/R-Mend/RMend-Backend/internal/authz"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRequestNotFound    = errors.New("employee request not found")
	ErrDuplicateRequest   = errors.New("pending request already sent to authority")
	ErrAlreadyMember      = errors.New("user is already part of an authority")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountDisabled    = errors.New("account disabled")
)

// User is an account identified by email. A user is staff of an authority iff
// AuthorityID is set; membership is exclusive.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	PhoneNumber     string     `json:"phone_number"`
	AuthCode        string     `json:"auth_code"`
	PasswordHash    string     `json:"-"`
	AuthorityID     *uuid.UUID `json:"authority_id,omitempty"`
	IsActive        bool       `json:"is_active"`
	IsEmailVerified bool       `json:"is_email_verified"`
	IsDeleted       bool       `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Actor projects the user into the access gate's view.
func (u User) Actor() authz.Actor {
	return authz.Actor{ID: u.ID, AuthorityID: u.AuthorityID}
}

// IsStaff reports whether the user belongs to an authority.
func (u User) IsStaff() bool {
	return u.AuthorityID != nil
}

// MembershipRequest is a pending ask by a user to join an authority as staff.
// Requests are resolved by deletion; there is no retained history.
type MembershipRequest struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	AuthorityID uuid.UUID `json:"authority_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// OwningAuthority scopes the request to its target authority.
func (m MembershipRequest) OwningAuthority() uuid.UUID {
	return m.AuthorityID
}

// CreateUserInput carries sign-up fields; the password arrives already hashed.
type CreateUserInput struct {
	Email        string
	Username     string
	PhoneNumber  string
	AuthCode     string
	PasswordHash string
}

// UpdateUserInput carries self-service profile changes. Nil means unchanged.
type UpdateUserInput struct {
	Username     *string
	PhoneNumber  *string
	AuthCode     *string
	PasswordHash *string
}
