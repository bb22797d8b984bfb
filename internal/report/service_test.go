package report

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/R-Mend/RMend-Backend/internal/authz"
	"github.com/R-Mend/RMend-Backend/internal/taxonomy"
)

type stubIntakeRepo struct {
	reports map[uuid.UUID]*Report
}

func newStubIntakeRepo() *stubIntakeRepo {
	return &stubIntakeRepo{reports: map[uuid.UUID]*Report{}}
}

func (s *stubIntakeRepo) Create(ctx context.Context, authorityID uuid.UUID, input CreateInput) (*Report, error) {
	typeID := input.ReportTypeID
	r := &Report{
		ID:             uuid.New(),
		AuthorityID:    authorityID,
		ReportTypeID:   &typeID,
		Longitude:      input.Longitude,
		Latitude:       input.Latitude,
		Details:        input.Details,
		NearestAddress: input.NearestAddress,
		SenderEmail:    input.SenderEmail,
		SenderName:     input.SenderName,
		SenderPhone:    input.SenderPhone,
		Priority:       false,
		State:          StateReported,
	}
	s.reports[r.ID] = r
	return r, nil
}

func (s *stubIntakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	if r, ok := s.reports[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (s *stubIntakeRepo) ListNear(ctx context.Context, lon, lat float64) ([]Report, error) {
	out := []Report{}
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubIntakeRepo) ListForAuthority(ctx context.Context, authorityID uuid.UUID) ([]Report, error) {
	out := []Report{}
	for _, r := range s.reports {
		if r.AuthorityID == authorityID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubIntakeRepo) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	if input.Priority != nil {
		r.Priority = *input.Priority
	}
	if input.State != nil {
		r.State = *input.State
	}
	return r, nil
}

func (s *stubIntakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.reports[id]; !ok {
		return ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

type stubTypeResolver struct {
	types map[uuid.UUID]*taxonomy.IssueType
}

func (s *stubTypeResolver) GetTypeByID(ctx context.Context, id uuid.UUID) (*taxonomy.IssueType, error) {
	if t, ok := s.types[id]; ok {
		return t, nil
	}
	return nil, taxonomy.ErrTypeNotFound
}

type stubRangeChecker struct {
	inRange bool
	matches bool
}

func (s *stubRangeChecker) InRange(ctx context.Context, lon, lat float64) (bool, error) {
	return s.inRange, nil
}

func (s *stubRangeChecker) MatchesPoint(ctx context.Context, authorityID uuid.UUID, lon, lat float64) (bool, error) {
	return s.matches, nil
}

func clonedType(authorityID uuid.UUID) *taxonomy.IssueType {
	groupID := uuid.New()
	return &taxonomy.IssueType{
		ID:      uuid.New(),
		GroupID: groupID,
		Name:    "Pothole",
		Group:   taxonomy.IssueGroup{ID: groupID, AuthorityID: authorityID, Name: "Roads"},
	}
}

func validInput(typeID uuid.UUID) CreateInput {
	return CreateInput{
		ReportTypeID:   typeID,
		Longitude:      -122.33,
		Latitude:       47.6,
		Details:        "large pothole",
		NearestAddress: "4th Ave",
		SenderEmail:    "a@b.com",
		SenderName:     "A",
	}
}

func TestCreateRoutesToTypeAuthority(t *testing.T) {
	repo := newStubIntakeRepo()
	authorityID := uuid.New()
	issueType := clonedType(authorityID)
	svc := NewService(repo, &stubTypeResolver{types: map[uuid.UUID]*taxonomy.IssueType{issueType.ID: issueType}}, &stubRangeChecker{inRange: true, matches: true})

	created, err := svc.Create(context.Background(), validInput(issueType.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.AuthorityID != authorityID {
		t.Fatalf("report must be routed to the issue type's authority")
	}
	if created.State != StateReported || created.Priority {
		t.Fatalf("new report must start Reported and non-priority, got state=%d priority=%v", created.State, created.Priority)
	}
	if len(repo.reports) != 1 {
		t.Fatalf("expected one persisted report, got %d", len(repo.reports))
	}
}

func TestCreateOutOfRangePersistsNothing(t *testing.T) {
	repo := newStubIntakeRepo()
	authorityID := uuid.New()
	issueType := clonedType(authorityID)
	svc := NewService(repo, &stubTypeResolver{types: map[uuid.UUID]*taxonomy.IssueType{issueType.ID: issueType}}, &stubRangeChecker{inRange: false})

	if _, err := svc.Create(context.Background(), validInput(issueType.ID)); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if len(repo.reports) != 0 {
		t.Fatalf("nothing may be persisted for an out-of-range report")
	}
}

func TestCreateUnknownType(t *testing.T) {
	repo := newStubIntakeRepo()
	svc := NewService(repo, &stubTypeResolver{types: map[uuid.UUID]*taxonomy.IssueType{}}, &stubRangeChecker{inRange: true})

	if _, err := svc.Create(context.Background(), validInput(uuid.New())); !errors.Is(err, taxonomy.ErrTypeNotFound) {
		t.Fatalf("expected ErrTypeNotFound, got %v", err)
	}
}

func TestUpdateTouchesOnlyTriageFields(t *testing.T) {
	repo := newStubIntakeRepo()
	authorityID := uuid.New()
	issueType := clonedType(authorityID)
	svc := NewService(repo, &stubTypeResolver{types: map[uuid.UUID]*taxonomy.IssueType{issueType.ID: issueType}}, &stubRangeChecker{inRange: true, matches: true})

	created, err := svc.Create(context.Background(), validInput(issueType.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	staff := authz.Actor{ID: uuid.New(), AuthorityID: &authorityID}
	priority := true
	state := StateReviewing
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Priority: &priority, State: &state}, staff)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.Priority || updated.State != StateReviewing {
		t.Fatalf("triage fields not applied: %+v", updated)
	}
	if updated.Details != "large pothole" || updated.NearestAddress != "4th Ave" {
		t.Fatalf("intake fields must stay as created")
	}
}

func TestUpdateRejectsInvalidState(t *testing.T) {
	repo := newStubIntakeRepo()
	authorityID := uuid.New()
	issueType := clonedType(authorityID)
	svc := NewService(repo, &stubTypeResolver{types: map[uuid.UUID]*taxonomy.IssueType{issueType.ID: issueType}}, &stubRangeChecker{inRange: true, matches: true})

	created, err := svc.Create(context.Background(), validInput(issueType.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	staff := authz.Actor{ID: uuid.New(), AuthorityID: &authorityID}
	bad := int16(9)
	if _, err := svc.Update(context.Background(), created.ID, UpdateInput{State: &bad}, staff); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if repo.reports[created.ID].State != StateReported {
		t.Fatalf("state must be unchanged after a rejected update")
	}
}

func TestTriageRequiresOwningAuthorityStaff(t *testing.T) {
	repo := newStubIntakeRepo()
	authorityID := uuid.New()
	issueType := clonedType(authorityID)
	svc := NewService(repo, &stubTypeResolver{types: map[uuid.UUID]*taxonomy.IssueType{issueType.ID: issueType}}, &stubRangeChecker{inRange: true, matches: true})

	created, err := svc.Create(context.Background(), validInput(issueType.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	otherAuthority := uuid.New()
	outsider := authz.Actor{ID: uuid.New(), AuthorityID: &otherAuthority}
	priority := true

	if _, err := svc.Update(context.Background(), created.ID, UpdateInput{Priority: &priority}, outsider); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("update: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, outsider); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ListForAuthority(context.Background(), authorityID, outsider); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("list: expected ErrForbidden, got %v", err)
	}

	staff := authz.Actor{ID: uuid.New(), AuthorityID: &authorityID}
	if err := svc.Delete(context.Background(), created.ID, staff); err != nil {
		t.Fatalf("owning staff delete: %v", err)
	}
	if len(repo.reports) != 0 {
		t.Fatalf("report should be gone after delete")
	}
}

func TestPublicFeatureHidesSenderFields(t *testing.T) {
	r := Report{
		ID:          uuid.New(),
		AuthorityID: uuid.New(),
		Longitude:   -122.33,
		Latitude:    47.6,
		SenderEmail: "a@b.com",
		SenderName:  "A",
		SenderPhone: "555",
		Priority:    true,
		State:       StateReported,
	}

	public := r.PublicFeature()
	for _, key := range []string{"sender_email", "sender_name", "sender_phone", "priority"} {
		if _, ok := public.Properties[key]; ok {
			t.Fatalf("public feature must not expose %q", key)
		}
	}
	if public.Geometry.Coordinates != [2]float64{-122.33, 47.6} {
		t.Fatalf("geometry must be [lon, lat], got %v", public.Geometry.Coordinates)
	}

	admin := r.AdminFeature()
	if admin.Properties["sender_email"] != "a@b.com" {
		t.Fatalf("admin feature keeps sender fields")
	}
}
