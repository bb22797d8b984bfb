package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/R-Mend/RMend-Backend/internal/authority"
	"github.com/R-Mend/RMend-Backend/internal/authz"
)

const groupsCacheTTL = 60 * time.Second

// CatalogRepository is the store surface the service needs.
type CatalogRepository interface {
	ListBase(ctx context.Context) ([]BaseGroup, error)
	GetBaseGroupByName(ctx context.Context, name string) (*BaseGroup, error)
	GetBaseType(ctx context.Context, groupName, typeName string) (*BaseType, error)
	CreateGroup(ctx context.Context, authorityID uuid.UUID, name string) (*IssueGroup, error)
	GetGroupByName(ctx context.Context, authorityID uuid.UUID, name string) (*IssueGroup, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	CreateType(ctx context.Context, groupID uuid.UUID, name string) (*IssueType, error)
	GetTypeByID(ctx context.Context, id uuid.UUID) (*IssueType, error)
	GetTypeByName(ctx context.Context, authorityID uuid.UUID, name string) (*IssueType, error)
	DeleteType(ctx context.Context, id uuid.UUID) error
	ListGroups(ctx context.Context, authorityID uuid.UUID) ([]IssueGroup, error)
}

// JurisdictionResolver resolves which authority owns a point.
type JurisdictionResolver interface {
	ResolveForPoint(ctx context.Context, lon, lat float64) (*authority.Authority, error)
}

// Service implements the copy-on-demand issue taxonomy: authorities clone
// entries out of the global template catalog and tag reports with the clones.
type Service struct {
	repo          CatalogRepository
	jurisdictions JurisdictionResolver
	cache         *redis.Client
}

// NewService creates a service instance. cache may be nil.
func NewService(repo CatalogRepository, jurisdictions JurisdictionResolver, cache *redis.Client) *Service {
	return &Service{repo: repo, jurisdictions: jurisdictions, cache: cache}
}

// ListBase returns the template catalog.
func (s *Service) ListBase(ctx context.Context) ([]BaseGroup, error) {
	return s.repo.ListBase(ctx)
}

// CloneGroup copies a template group's name into the authority's namespace.
// Cloning an already-present name is rejected, never merged.
func (s *Service) CloneGroup(ctx context.Context, authorityID uuid.UUID, groupName string, actor authz.Actor) (*IssueGroup, error) {
	if err := authz.RequireAuthorityAdmin(actor, authz.AuthorityRef(authorityID)); err != nil {
		return nil, err
	}

	groupName = NormalizeName(groupName)
	if _, err := s.repo.GetBaseGroupByName(ctx, groupName); err != nil {
		return nil, err
	}

	group, err := s.repo.CreateGroup(ctx, authorityID, groupName)
	if err != nil {
		return nil, err
	}

	s.invalidateGroups(ctx, authorityID)
	return group, nil
}

// DeleteGroup removes a cloned group and, transitively, its cloned types.
func (s *Service) DeleteGroup(ctx context.Context, authorityID uuid.UUID, groupName string, actor authz.Actor) error {
	group, err := s.repo.GetGroupByName(ctx, authorityID, NormalizeName(groupName))
	if err != nil {
		return err
	}
	if err := authz.RequireAuthorityAdmin(actor, group); err != nil {
		return err
	}

	if err := s.repo.DeleteGroup(ctx, group.ID); err != nil {
		return err
	}

	s.invalidateGroups(ctx, authorityID)
	return nil
}

// CloneType copies a template type under an authority's cloned group. The
// template type must live inside the same-named base group, and the authority
// must already hold a clone of that group.
func (s *Service) CloneType(ctx context.Context, authorityID uuid.UUID, groupName, typeName string, actor authz.Actor) (*IssueType, error) {
	groupName = NormalizeName(groupName)
	typeName = NormalizeName(typeName)

	group, err := s.repo.GetGroupByName(ctx, authorityID, groupName)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAuthorityAdmin(actor, group); err != nil {
		return nil, err
	}

	baseType, err := s.repo.GetBaseType(ctx, groupName, typeName)
	if err != nil {
		return nil, err
	}

	issueType, err := s.repo.CreateType(ctx, group.ID, baseType.Name)
	if err != nil {
		return nil, err
	}
	issueType.Group = *group

	s.invalidateGroups(ctx, authorityID)
	return issueType, nil
}

// DeleteType removes a cloned type. Reports tagged with it keep existing with
// a nulled type reference.
func (s *Service) DeleteType(ctx context.Context, authorityID uuid.UUID, typeName string, actor authz.Actor) error {
	issueType, err := s.repo.GetTypeByName(ctx, authorityID, NormalizeName(typeName))
	if err != nil {
		return err
	}
	if err := authz.RequireAuthorityAdmin(actor, issueType); err != nil {
		return err
	}

	if err := s.repo.DeleteType(ctx, issueType.ID); err != nil {
		return err
	}

	s.invalidateGroups(ctx, authorityID)
	return nil
}

// GetTypeByID resolves a cloned type with its owning group, for report intake.
func (s *Service) GetTypeByID(ctx context.Context, id uuid.UUID) (*IssueType, error) {
	return s.repo.GetTypeByID(ctx, id)
}

// ListByAuthority returns the authority's groups with nested types, staff only.
func (s *Service) ListByAuthority(ctx context.Context, authorityID uuid.UUID, actor authz.Actor) ([]IssueGroup, error) {
	if err := authz.RequireAuthorityAdmin(actor, authz.AuthorityRef(authorityID)); err != nil {
		return nil, err
	}
	return s.listGroupsCached(ctx, authorityID)
}

// ListByLocation is the public read: the point resolves to a jurisdiction
// first, then that authority's groups are returned. A point no jurisdiction
// matches yields an empty list.
func (s *Service) ListByLocation(ctx context.Context, lon, lat float64) ([]IssueGroup, error) {
	owner, err := s.jurisdictions.ResolveForPoint(ctx, lon, lat)
	if err != nil {
		if errors.Is(err, authority.ErrNotFound) {
			return []IssueGroup{}, nil
		}
		return nil, err
	}
	return s.listGroupsCached(ctx, owner.ID)
}

func (s *Service) listGroupsCached(ctx context.Context, authorityID uuid.UUID) ([]IssueGroup, error) {
	key := groupsCacheKey(authorityID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var groups []IssueGroup
			if json.Unmarshal(data, &groups) == nil {
				return groups, nil
			}
		}
	}

	groups, err := s.repo.ListGroups(ctx, authorityID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(groups); err == nil {
			_ = s.cache.Set(ctx, key, payload, groupsCacheTTL).Err()
		}
	}

	return groups, nil
}

func (s *Service) invalidateGroups(ctx context.Context, authorityID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, groupsCacheKey(authorityID)).Err()
	}
}

func groupsCacheKey(authorityID uuid.UUID) string {
	return fmt.Sprintf("taxonomy:groups:%s", authorityID)
}
