package taxonomy

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrBaseGroupNotFound = errors.New("base issue group not found")
	ErrBaseTypeNotFound  = errors.New("base issue type not found")
	ErrGroupNotFound     = errors.New("issue group not found")
	ErrTypeNotFound      = errors.New("issue type not found")
	ErrAlreadyExists     = errors.New("issue taxonomy entry already exists")
)

// BaseGroup is a template issue group from the global catalog, with the names
// of the template types it owns.
type BaseGroup struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	IssueTypes []string  `json:"issue_types"`
}

// BaseType is a template issue type inside a base group.
type BaseType struct {
	ID      uuid.UUID `json:"id"`
	GroupID uuid.UUID `json:"group_id"`
	Name    string    `json:"name"`
}

// IssueGroup is an authority's cloned copy of a base group.
type IssueGroup struct {
	ID          uuid.UUID `json:"id"`
	AuthorityID uuid.UUID `json:"authority_id"`
	Name        string    `json:"name"`
	IssueTypes  []string  `json:"issue_types"`
}

// OwningAuthority scopes the group to its authority.
func (g IssueGroup) OwningAuthority() uuid.UUID {
	return g.AuthorityID
}

// IssueType is an authority's cloned copy of a base type. Its authority is
// reached through the owning group.
type IssueType struct {
	ID      uuid.UUID  `json:"id"`
	GroupID uuid.UUID  `json:"group_id"`
	Name    string     `json:"name"`
	Group   IssueGroup `json:"-"`
}

// OwningAuthority delegates to the owning group, one hop away.
func (t IssueType) OwningAuthority() uuid.UUID {
	return t.Group.OwningAuthority()
}

// NormalizeName trims taxonomy names before lookups and inserts.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
