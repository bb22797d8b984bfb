package authz

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrForbidden indicates the acting user is not staff of the resource's authority.
	ErrForbidden = errors.New("access denied")
)

// HasAuthority is implemented by every authority-scoped resource. Resources
// that belong to an authority indirectly (an issue type through its group)
// delegate to their parent.
type HasAuthority interface {
	OwningAuthority() uuid.UUID
}

// AuthorityRef adapts a bare authority id into a scoped resource, for
// operations that create the resource being checked.
type AuthorityRef uuid.UUID

// OwningAuthority returns the referenced authority id.
func (r AuthorityRef) OwningAuthority() uuid.UUID {
	return uuid.UUID(r)
}

// Actor is the acting user as seen by the access gate: its id and, when the
// user is staff, the single authority it belongs to.
type Actor struct {
	ID          uuid.UUID
	AuthorityID *uuid.UUID
}

// IsStaff reports whether the actor belongs to any authority.
func (a Actor) IsStaff() bool {
	return a.AuthorityID != nil
}

// IsAuthorityAdmin is the single permission predicate: true iff the actor's
// membership matches the resource's authority. There is no super-admin and no
// multi-authority staff.
func IsAuthorityAdmin(actor Actor, resource HasAuthority) bool {
	return actor.AuthorityID != nil && *actor.AuthorityID == resource.OwningAuthority()
}

// RequireAuthorityAdmin returns ErrForbidden unless the actor is staff of the
// resource's authority.
func RequireAuthorityAdmin(actor Actor, resource HasAuthority) error {
	if !IsAuthorityAdmin(actor, resource) {
		return ErrForbidden
	}
	return nil
}
