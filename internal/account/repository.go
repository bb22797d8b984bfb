package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/R-Mend/RMend-Backend/internal/db"
)

const userColumns = `
	id, email, username, phone_number, auth_code, password_hash, authority_id,
	is_active, is_email_verified, is_deleted, created_at`

// Repository provides access to users and employee requests.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateUser inserts a new account.
func (r *Repository) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	query := `
        INSERT INTO users (email, username, phone_number, auth_code, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(input.Email)),
		strings.TrimSpace(input.Username),
		strings.TrimSpace(input.PhoneNumber),
		strings.TrimSpace(input.AuthCode),
		input.PasswordHash,
	)

	user, err := scanUser(row)
	if db.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return user, err
}

// GetUserByID fetches a user unless soft-deleted.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND NOT is_deleted`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetUserByEmail fetches a user by its identity key.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND NOT is_deleted`
	return scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// UpdateUser applies self-service profile changes.
func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*User, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	set := func(column string, value *string) {
		if value != nil {
			setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
			args = append(args, *value)
			idx++
		}
	}

	set("username", input.Username)
	set("phone_number", input.PhoneNumber)
	set("auth_code", input.AuthCode)
	set("password_hash", input.PasswordHash)

	if len(setParts) == 0 {
		return r.GetUserByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE users
        SET %s
        WHERE id = $%d AND NOT is_deleted
        RETURNING `+userColumns, strings.Join(setParts, ", "), idx)

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// CreateMembershipRequest queues a pending join request. The (user, authority)
// pair is unique; a second pending request is rejected.
func (r *Repository) CreateMembershipRequest(ctx context.Context, userID, authorityID uuid.UUID) (*MembershipRequest, error) {
	const query = `
        INSERT INTO employee_requests (user_id, authority_id)
        VALUES ($1, $2)
        RETURNING id, user_id, authority_id, created_at
    `

	request, err := scanRequest(r.pool.QueryRow(ctx, query, userID, authorityID))
	if db.IsUniqueViolation(err) {
		return nil, ErrDuplicateRequest
	}
	return request, err
}

// GetMembershipRequest fetches a pending request.
func (r *Repository) GetMembershipRequest(ctx context.Context, id uuid.UUID) (*MembershipRequest, error) {
	const query = `
        SELECT id, user_id, authority_id, created_at
        FROM employee_requests
        WHERE id = $1
    `
	return scanRequest(r.pool.QueryRow(ctx, query, id))
}

// ListMembershipRequests lists an authority's pending requests, oldest first.
func (r *Repository) ListMembershipRequests(ctx context.Context, authorityID uuid.UUID) ([]MembershipRequest, error) {
	const query = `
        SELECT id, user_id, authority_id, created_at
        FROM employee_requests
        WHERE authority_id = $1
        ORDER BY created_at ASC
    `

	rows, err := r.pool.Query(ctx, query, authorityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []MembershipRequest{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	return requests, rows.Err()
}

// AcceptMembershipRequest sets the requester's membership and removes the
// request in a single transaction.
func (r *Repository) AcceptMembershipRequest(ctx context.Context, request MembershipRequest) error {
	return db.WithTx(ctx, r.pool, func(pctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(pctx,
			`UPDATE users SET authority_id = $1 WHERE id = $2 AND authority_id IS NULL`,
			request.AuthorityID, request.UserID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyMember
		}

		tag, err = tx.Exec(pctx, `DELETE FROM employee_requests WHERE id = $1`, request.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrRequestNotFound
		}
		return nil
	})
}

// DeleteMembershipRequest removes a request without side effects.
func (r *Repository) DeleteMembershipRequest(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employee_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PhoneNumber, &u.AuthCode,
		&u.PasswordHash, &u.AuthorityID, &u.IsActive, &u.IsEmailVerified,
		&u.IsDeleted, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func scanRequest(row pgx.Row) (*MembershipRequest, error) {
	var m MembershipRequest
	if err := row.Scan(&m.ID, &m.UserID, &m.AuthorityID, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &m, nil
}
