package authority

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/R-Mend/RMend-Backend/internal/authz"
)

type stubJurisdictionRepo struct {
	authority      *Authority
	codeCollisions int
	setCodeCalls   int
}

func (s *stubJurisdictionRepo) Create(ctx context.Context, input CreateInput) (*Authority, error) {
	return s.authority, nil
}

func (s *stubJurisdictionRepo) GetByID(ctx context.Context, id uuid.UUID) (*Authority, error) {
	if s.authority != nil && s.authority.ID == id {
		return s.authority, nil
	}
	return nil, ErrNotFound
}

func (s *stubJurisdictionRepo) GetByAccessCode(ctx context.Context, code string) (*Authority, error) {
	if s.authority != nil && s.authority.AccessCode == code {
		return s.authority, nil
	}
	return nil, ErrNotFound
}

func (s *stubJurisdictionRepo) ResolveForPoint(ctx context.Context, lon, lat float64) (*Authority, error) {
	if s.authority == nil {
		return nil, ErrNotFound
	}
	return s.authority, nil
}

func (s *stubJurisdictionRepo) InRange(ctx context.Context, lon, lat float64) (bool, error) {
	return s.authority != nil, nil
}

func (s *stubJurisdictionRepo) MatchesPoint(ctx context.Context, id uuid.UUID, lon, lat float64) (bool, error) {
	return s.authority != nil && s.authority.ID == id, nil
}

func (s *stubJurisdictionRepo) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Authority, error) {
	if input.Name != nil {
		s.authority.Name = *input.Name
	}
	return s.authority, nil
}

func (s *stubJurisdictionRepo) SetAccessCode(ctx context.Context, id uuid.UUID, code string) (*Authority, error) {
	s.setCodeCalls++
	if s.setCodeCalls <= s.codeCollisions {
		return nil, &pgconn.PgError{Code: "23505", ConstraintName: "authorities_access_code_key"}
	}
	s.authority.AccessCode = code
	return s.authority, nil
}

func TestGetRequiresOwnStaff(t *testing.T) {
	a := &Authority{ID: uuid.New(), Name: "Test Authority", AccessCode: "ab12cd34"}
	svc := NewService(&stubJurisdictionRepo{authority: a})

	staff := authz.Actor{ID: uuid.New(), AuthorityID: &a.ID}
	got, err := svc.Get(context.Background(), a.ID, staff)
	if err != nil {
		t.Fatalf("staff get: %v", err)
	}
	if got.ID != a.ID {
		t.Fatal("wrong authority returned")
	}

	other := uuid.New()
	outsider := authz.Actor{ID: uuid.New(), AuthorityID: &other}
	if _, err := svc.Get(context.Background(), a.ID, outsider); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := svc.Get(context.Background(), uuid.New(), staff); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRotateAccessCodeRetriesOnCollision(t *testing.T) {
	a := &Authority{ID: uuid.New(), Name: "Test Authority", AccessCode: "ab12cd34"}
	repo := &stubJurisdictionRepo{authority: a, codeCollisions: 2}
	svc := NewService(repo)

	staff := authz.Actor{ID: uuid.New(), AuthorityID: &a.ID}
	updated, err := svc.RotateAccessCode(context.Background(), a.ID, staff)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if updated.AccessCode == "ab12cd34" {
		t.Fatal("access code must change")
	}
	if len(updated.AccessCode) != 8 {
		t.Fatalf("access code must be 8 characters, got %q", updated.AccessCode)
	}
	if repo.setCodeCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.setCodeCalls)
	}
}

func TestRotateAccessCodeGivesUpAfterRetries(t *testing.T) {
	a := &Authority{ID: uuid.New(), Name: "Test Authority", AccessCode: "ab12cd34"}
	repo := &stubJurisdictionRepo{authority: a, codeCollisions: 5}
	svc := NewService(repo)

	staff := authz.Actor{ID: uuid.New(), AuthorityID: &a.ID}
	if _, err := svc.RotateAccessCode(context.Background(), a.ID, staff); !errors.Is(err, ErrAccessCode) {
		t.Fatalf("expected ErrAccessCode, got %v", err)
	}
}

func TestUpdateRequiresOwnStaff(t *testing.T) {
	a := &Authority{ID: uuid.New(), Name: "Test Authority"}
	svc := NewService(&stubJurisdictionRepo{authority: a})

	name := "Renamed Authority"
	other := uuid.New()
	outsider := authz.Actor{ID: uuid.New(), AuthorityID: &other}
	if _, err := svc.Update(context.Background(), a.ID, UpdateInput{Name: &name}, outsider); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	staff := authz.Actor{ID: uuid.New(), AuthorityID: &a.ID}
	updated, err := svc.Update(context.Background(), a.ID, UpdateInput{Name: &name}, staff)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed Authority" {
		t.Fatalf("name not applied: %q", updated.Name)
	}
}
