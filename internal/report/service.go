package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/R-Mend/RMend-Backend/internal/authz"
	"github.com/R-Mend/RMend-Backend/internal/taxonomy"
)

// IntakeRepository is the store surface the service needs.
type IntakeRepository interface {
	Create(ctx context.Context, authorityID uuid.UUID, input CreateInput) (*Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	ListNear(ctx context.Context, lon, lat float64) ([]Report, error)
	ListForAuthority(ctx context.Context, authorityID uuid.UUID) ([]Report, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TypeResolver resolves a cloned issue type with its owning group.
type TypeResolver interface {
	GetTypeByID(ctx context.Context, id uuid.UUID) (*taxonomy.IssueType, error)
}

// RangeChecker answers jurisdiction questions about a point.
type RangeChecker interface {
	InRange(ctx context.Context, lon, lat float64) (bool, error)
	MatchesPoint(ctx context.Context, authorityID uuid.UUID, lon, lat float64) (bool, error)
}

// Service implements report intake, routing and staff triage.
type Service struct {
	repo          IntakeRepository
	types         TypeResolver
	jurisdictions RangeChecker
}

// NewService creates a service instance.
func NewService(repo IntakeRepository, types TypeResolver, jurisdictions RangeChecker) *Service {
	return &Service{repo: repo, types: types, jurisdictions: jurisdictions}
}

// Create validates and routes a new report. The owning authority is derived
// from the submitted issue type through its group; the location must also
// match some jurisdiction or the report is rejected as out of range. The two
// derivations can disagree for a type cloned by a different authority than the
// one whose boundary matches the point; that divergence is logged, not
// rejected.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Report, error) {
	issueType, err := s.types.GetTypeByID(ctx, input.ReportTypeID)
	if err != nil {
		return nil, err
	}
	authorityID := issueType.OwningAuthority()

	inRange, err := s.jurisdictions.InRange(ctx, input.Longitude, input.Latitude)
	if err != nil {
		return nil, err
	}
	if !inRange {
		return nil, ErrOutOfRange
	}

	if owned, err := s.jurisdictions.MatchesPoint(ctx, authorityID, input.Longitude, input.Latitude); err == nil && !owned {
		log.Warn().
			Str("report_type_id", input.ReportTypeID.String()).
			Str("type_authority", authorityID.String()).
			Msg("report location matches a jurisdiction other than the issue type's authority")
	}

	return s.repo.Create(ctx, authorityID, input)
}

// ListNear is the public feed: all reports within 10 miles of the point.
func (s *Service) ListNear(ctx context.Context, lon, lat float64) ([]Report, error) {
	return s.repo.ListNear(ctx, lon, lat)
}

// ListForAuthority is the staff view with full sender fields.
func (s *Service) ListForAuthority(ctx context.Context, authorityID uuid.UUID, actor authz.Actor) ([]Report, error) {
	if err := authz.RequireAuthorityAdmin(actor, authz.AuthorityRef(authorityID)); err != nil {
		return nil, err
	}
	return s.repo.ListForAuthority(ctx, authorityID)
}

// Update changes priority and/or state; every intake field stays as created
// no matter what the caller submits.
func (s *Service) Update(ctx context.Context, reportID uuid.UUID, input UpdateInput, actor authz.Actor) (*Report, error) {
	existing, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAuthorityAdmin(actor, existing); err != nil {
		return nil, err
	}

	if input.State != nil && !ValidState(*input.State) {
		return nil, ErrInvalidState
	}

	return s.repo.Update(ctx, reportID, input)
}

// Delete removes a report for good; there is no tombstone.
func (s *Service) Delete(ctx context.Context, reportID uuid.UUID, actor authz.Actor) error {
	existing, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	if err := authz.RequireAuthorityAdmin(actor, existing); err != nil {
		return err
	}
	return s.repo.Delete(ctx, reportID)
}
