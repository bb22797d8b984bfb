package account

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/R-Mend/RMend-Backend/internal/auth"
	"github.com/R-Mend/RMend-Backend/internal/authority"
	"github.com/R-Mend/RMend-Backend/internal/authz"
	"github.com/R-Mend/RMend-Backend/internal/util"
)

// LedgerRepository is the store surface the service needs.
type LedgerRepository interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*User, error)
	CreateMembershipRequest(ctx context.Context, userID, authorityID uuid.UUID) (*MembershipRequest, error)
	GetMembershipRequest(ctx context.Context, id uuid.UUID) (*MembershipRequest, error)
	ListMembershipRequests(ctx context.Context, authorityID uuid.UUID) ([]MembershipRequest, error)
	AcceptMembershipRequest(ctx context.Context, request MembershipRequest) error
	DeleteMembershipRequest(ctx context.Context, id uuid.UUID) error
}

// AccessCodeResolver resolves an authority from its join code.
type AccessCodeResolver interface {
	GetByAccessCode(ctx context.Context, code string) (*authority.Authority, error)
}

// Service holds account and membership-ledger rules: sign-up, profile
// self-service and the join-request lifecycle.
type Service struct {
	repo        LedgerRepository
	authorities AccessCodeResolver
}

// NewService creates a service instance.
func NewService(repo LedgerRepository, authorities AccessCodeResolver) *Service {
	return &Service{repo: repo, authorities: authorities}
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, email, username, password, phone, authCode string) (*User, error) {
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		// same fallback the mobile clients rely on: local part of the email
		username = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := auth.Hash(password)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateUser(ctx, CreateUserInput{
		Email:        email,
		Username:     username,
		PhoneNumber:  phone,
		AuthCode:     authCode,
		PasswordHash: hash,
	})
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// GetUserByEmail fetches a user by its identity key.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

// UpdateProfile applies self-service changes; a new password is re-hashed.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateUserInput, password *string) (*User, error) {
	if password != nil {
		if err := util.ValidatePassword(*password); err != nil {
			return nil, err
		}
		hash, err := auth.Hash(*password)
		if err != nil {
			return nil, err
		}
		input.PasswordHash = &hash
	}
	return s.repo.UpdateUser(ctx, userID, input)
}

// RequestMembership queues a join request against the authority owning the
// quoted access code. A duplicate pending pair is rejected.
func (s *Service) RequestMembership(ctx context.Context, userID uuid.UUID, accessCode string) (*MembershipRequest, error) {
	target, err := s.authorities.GetByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateMembershipRequest(ctx, userID, target.ID)
}

// ListMembershipRequests returns an authority's pending requests, staff only.
func (s *Service) ListMembershipRequests(ctx context.Context, authorityID uuid.UUID, actor authz.Actor) ([]MembershipRequest, error) {
	if err := authz.RequireAuthorityAdmin(actor, authz.AuthorityRef(authorityID)); err != nil {
		return nil, err
	}
	return s.repo.ListMembershipRequests(ctx, authorityID)
}

// ResolveMembershipRequest accepts or rejects a pending request. Accepting
// sets the requester's membership and deletes the request atomically; a
// requester who already belongs to an authority is rejected. Rejecting only
// deletes the request. Either way the request is gone afterwards.
func (s *Service) ResolveMembershipRequest(ctx context.Context, requestID uuid.UUID, accept bool, actor authz.Actor) error {
	request, err := s.repo.GetMembershipRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := authz.RequireAuthorityAdmin(actor, request); err != nil {
		return err
	}

	if !accept {
		return s.repo.DeleteMembershipRequest(ctx, request.ID)
	}
	return s.repo.AcceptMembershipRequest(ctx, *request)
}
