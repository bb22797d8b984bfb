package account

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/R-Mend/RMend-Backend/internal/authority"
	"github.com/R-Mend/RMend-Backend/internal/authz"
)

type stubLedgerRepo struct {
	users    map[uuid.UUID]*User
	requests map[uuid.UUID]*MembershipRequest
}

func newStubLedgerRepo() *stubLedgerRepo {
	return &stubLedgerRepo{
		users:    map[uuid.UUID]*User{},
		requests: map[uuid.UUID]*MembershipRequest{},
	}
}

func (s *stubLedgerRepo) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	for _, u := range s.users {
		if u.Email == input.Email {
			return nil, ErrEmailTaken
		}
	}
	u := &User{
		ID:           uuid.New(),
		Email:        input.Email,
		Username:     input.Username,
		PhoneNumber:  input.PhoneNumber,
		AuthCode:     input.AuthCode,
		PasswordHash: input.PasswordHash,
		IsActive:     true,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubLedgerRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (s *stubLedgerRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubLedgerRepo) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if input.Username != nil {
		u.Username = *input.Username
	}
	if input.PhoneNumber != nil {
		u.PhoneNumber = *input.PhoneNumber
	}
	if input.AuthCode != nil {
		u.AuthCode = *input.AuthCode
	}
	if input.PasswordHash != nil {
		u.PasswordHash = *input.PasswordHash
	}
	return u, nil
}

func (s *stubLedgerRepo) CreateMembershipRequest(ctx context.Context, userID, authorityID uuid.UUID) (*MembershipRequest, error) {
	for _, r := range s.requests {
		if r.UserID == userID && r.AuthorityID == authorityID {
			return nil, ErrDuplicateRequest
		}
	}
	r := &MembershipRequest{ID: uuid.New(), UserID: userID, AuthorityID: authorityID}
	s.requests[r.ID] = r
	return r, nil
}

func (s *stubLedgerRepo) GetMembershipRequest(ctx context.Context, id uuid.UUID) (*MembershipRequest, error) {
	if r, ok := s.requests[id]; ok {
		return r, nil
	}
	return nil, ErrRequestNotFound
}

func (s *stubLedgerRepo) ListMembershipRequests(ctx context.Context, authorityID uuid.UUID) ([]MembershipRequest, error) {
	out := []MembershipRequest{}
	for _, r := range s.requests {
		if r.AuthorityID == authorityID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubLedgerRepo) AcceptMembershipRequest(ctx context.Context, request MembershipRequest) error {
	u, ok := s.users[request.UserID]
	if !ok {
		return ErrNotFound
	}
	if u.AuthorityID != nil {
		return ErrAlreadyMember
	}
	id := request.AuthorityID
	u.AuthorityID = &id
	delete(s.requests, request.ID)
	return nil
}

func (s *stubLedgerRepo) DeleteMembershipRequest(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.requests[id]; !ok {
		return ErrRequestNotFound
	}
	delete(s.requests, id)
	return nil
}

type stubCodeResolver struct {
	byCode map[string]*authority.Authority
}

func (s *stubCodeResolver) GetByAccessCode(ctx context.Context, code string) (*authority.Authority, error) {
	if a, ok := s.byCode[code]; ok {
		return a, nil
	}
	return nil, authority.ErrNotFound
}

func TestRegisterValidatesAndHashes(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewService(repo, &stubCodeResolver{})

	if _, err := svc.Register(context.Background(), "not-an-email", "", "longenough", "", ""); err == nil {
		t.Fatal("expected invalid email to be rejected")
	}
	if _, err := svc.Register(context.Background(), "a@b.com", "", "short", "", ""); err == nil {
		t.Fatal("expected short password to be rejected")
	}

	user, err := svc.Register(context.Background(), "a@b.com", "", "longenough", "", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "a" {
		t.Fatalf("expected username to fall back to email local part, got %q", user.Username)
	}
	if user.PasswordHash == "longenough" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}

	if _, err := svc.Register(context.Background(), "a@b.com", "", "longenough", "", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRequestMembershipDuplicate(t *testing.T) {
	repo := newStubLedgerRepo()
	target := &authority.Authority{ID: uuid.New(), Name: "Test Authority"}
	svc := NewService(repo, &stubCodeResolver{byCode: map[string]*authority.Authority{"ab12cd34": target}})

	userID := uuid.New()
	repo.users[userID] = &User{ID: userID, Email: "a@b.com", IsActive: true}

	if _, err := svc.RequestMembership(context.Background(), userID, "ab12cd34"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := svc.RequestMembership(context.Background(), userID, "ab12cd34"); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
	if len(repo.requests) != 1 {
		t.Fatalf("expected one pending request, got %d", len(repo.requests))
	}

	if _, err := svc.RequestMembership(context.Background(), userID, "wrong"); !errors.Is(err, authority.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a bad code, got %v", err)
	}
}

func TestResolveMembershipRequestExclusivity(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewService(repo, &stubCodeResolver{})

	authorityA := uuid.New()
	authorityB := uuid.New()
	admin := authz.Actor{ID: uuid.New(), AuthorityID: &authorityA}
	adminB := authz.Actor{ID: uuid.New(), AuthorityID: &authorityB}

	userID := uuid.New()
	repo.users[userID] = &User{ID: userID, Email: "a@b.com", IsActive: true}

	reqA := &MembershipRequest{ID: uuid.New(), UserID: userID, AuthorityID: authorityA}
	reqB := &MembershipRequest{ID: uuid.New(), UserID: userID, AuthorityID: authorityB}
	repo.requests[reqA.ID] = reqA
	repo.requests[reqB.ID] = reqB

	if err := svc.ResolveMembershipRequest(context.Background(), reqA.ID, true, admin); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if repo.users[userID].AuthorityID == nil || *repo.users[userID].AuthorityID != authorityA {
		t.Fatal("user should now belong to authority A")
	}

	// second accept against a different authority must fail while membership holds
	if err := svc.ResolveMembershipRequest(context.Background(), reqB.ID, true, adminB); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestResolveMembershipRequestGateAndReject(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewService(repo, &stubCodeResolver{})

	authorityA := uuid.New()
	userID := uuid.New()
	repo.users[userID] = &User{ID: userID, Email: "a@b.com", IsActive: true}

	req := &MembershipRequest{ID: uuid.New(), UserID: userID, AuthorityID: authorityA}
	repo.requests[req.ID] = req

	outsiderAuthority := uuid.New()
	outsider := authz.Actor{ID: uuid.New(), AuthorityID: &outsiderAuthority}
	if err := svc.ResolveMembershipRequest(context.Background(), req.ID, true, outsider); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	admin := authz.Actor{ID: uuid.New(), AuthorityID: &authorityA}
	if err := svc.ResolveMembershipRequest(context.Background(), req.ID, false, admin); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if len(repo.requests) != 0 {
		t.Fatal("rejected request should be deleted")
	}
	if repo.users[userID].AuthorityID != nil {
		t.Fatal("reject must not grant membership")
	}
}

func TestListMembershipRequestsStaffOnly(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewService(repo, &stubCodeResolver{})

	authorityA := uuid.New()
	citizen := authz.Actor{ID: uuid.New()}
	if _, err := svc.ListMembershipRequests(context.Background(), authorityA, citizen); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
