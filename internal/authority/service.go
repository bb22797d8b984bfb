package authority

import (
	"context"

	"github.com/google/uuid"

	"github.com/R-Mend/RMend-Backend/internal/authz"
	"github.com/R-Mend/RMend-Backend/internal/db"
	"github.com/R-Mend/RMend-Backend/internal/util"
)

// JurisdictionRepository is the store surface the service needs.
type JurisdictionRepository interface {
	Create(ctx context.Context, input CreateInput) (*Authority, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Authority, error)
	GetByAccessCode(ctx context.Context, code string) (*Authority, error)
	ResolveForPoint(ctx context.Context, lon, lat float64) (*Authority, error)
	InRange(ctx context.Context, lon, lat float64) (bool, error)
	MatchesPoint(ctx context.Context, id uuid.UUID, lon, lat float64) (bool, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Authority, error)
	SetAccessCode(ctx context.Context, id uuid.UUID, code string) (*Authority, error)
}

// Service holds jurisdiction rules: point resolution, access-code lookup and
// the owner-only mutators.
type Service struct {
	repo JurisdictionRepository
}

// NewService creates a service instance.
func NewService(repo JurisdictionRepository) *Service {
	return &Service{repo: repo}
}

// Create registers a new jurisdiction. Used by the seed tool; there is no
// public endpoint for this.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Authority, error) {
	for attempt := 0; attempt < 3; attempt++ {
		input.AccessCode = util.NewAccessCode()
		created, err := s.repo.Create(ctx, input)
		if db.IsUniqueViolation(err) {
			continue
		}
		return created, err
	}
	return nil, ErrAccessCode
}

// Get returns an authority for its own staff.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor authz.Actor) (*Authority, error) {
	authority, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAuthorityAdmin(actor, authority); err != nil {
		return nil, err
	}
	return authority, nil
}

// GetByAccessCode resolves the target of a join request.
func (s *Service) GetByAccessCode(ctx context.Context, code string) (*Authority, error) {
	return s.repo.GetByAccessCode(ctx, code)
}

// ResolveForPoint returns the authority owning a point, or ErrNotFound.
func (s *Service) ResolveForPoint(ctx context.Context, lon, lat float64) (*Authority, error) {
	return s.repo.ResolveForPoint(ctx, lon, lat)
}

// InRange reports whether the point matches any jurisdiction at all.
func (s *Service) InRange(ctx context.Context, lon, lat float64) (bool, error) {
	return s.repo.InRange(ctx, lon, lat)
}

// MatchesPoint checks a single authority's boundary against a point.
func (s *Service) MatchesPoint(ctx context.Context, id uuid.UUID, lon, lat float64) (bool, error) {
	return s.repo.MatchesPoint(ctx, id, lon, lat)
}

// Update applies owner-only contact changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput, actor authz.Actor) (*Authority, error) {
	authority, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAuthorityAdmin(actor, authority); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, input)
}

// RotateAccessCode replaces the join code with a fresh one, retrying on the
// rare collision with another authority's code.
func (s *Service) RotateAccessCode(ctx context.Context, id uuid.UUID, actor authz.Actor) (*Authority, error) {
	authority, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAuthorityAdmin(actor, authority); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 3; attempt++ {
		updated, err := s.repo.SetAccessCode(ctx, id, util.NewAccessCode())
		if db.IsUniqueViolation(err) {
			continue
		}
		return updated, err
	}
	return nil, ErrAccessCode
}
