package taxonomy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/R-Mend/RMend-Backend/internal/db"
)

// Repository provides access to the base catalog and the per-authority clones.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListBase returns the global template catalog with nested type names.
func (r *Repository) ListBase(ctx context.Context) ([]BaseGroup, error) {
	const query = `
        SELECT g.id, g.name, COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.id IS NOT NULL), '{}')
        FROM base_issue_groups g
        LEFT JOIN base_issue_types t ON t.group_id = g.id
        GROUP BY g.id, g.name
        ORDER BY g.name
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []BaseGroup{}
	for rows.Next() {
		var g BaseGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.IssueTypes); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// EnsureBaseGroup inserts a template group, returning the existing row on a
// name clash. Used by the seed tool.
func (r *Repository) EnsureBaseGroup(ctx context.Context, name string) (*BaseGroup, error) {
	const query = `
        INSERT INTO base_issue_groups (name)
        VALUES ($1)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, name
    `

	var g BaseGroup
	if err := r.pool.QueryRow(ctx, query, name).Scan(&g.ID, &g.Name); err != nil {
		return nil, err
	}
	return &g, nil
}

// EnsureBaseType inserts a template type under a template group, idempotently.
func (r *Repository) EnsureBaseType(ctx context.Context, groupID uuid.UUID, name string) (*BaseType, error) {
	const query = `
        INSERT INTO base_issue_types (group_id, name)
        VALUES ($1, $2)
        ON CONFLICT (group_id, name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, group_id, name
    `

	var t BaseType
	if err := r.pool.QueryRow(ctx, query, groupID, name).Scan(&t.ID, &t.GroupID, &t.Name); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBaseGroupByName fetches a template group.
func (r *Repository) GetBaseGroupByName(ctx context.Context, name string) (*BaseGroup, error) {
	const query = `SELECT id, name FROM base_issue_groups WHERE name = $1`

	var g BaseGroup
	if err := r.pool.QueryRow(ctx, query, name).Scan(&g.ID, &g.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBaseGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// GetBaseType fetches a template type within the named template group.
func (r *Repository) GetBaseType(ctx context.Context, groupName, typeName string) (*BaseType, error) {
	const query = `
        SELECT t.id, t.group_id, t.name
        FROM base_issue_types t
        JOIN base_issue_groups g ON g.id = t.group_id
        WHERE g.name = $1 AND t.name = $2
    `

	var t BaseType
	if err := r.pool.QueryRow(ctx, query, groupName, typeName).Scan(&t.ID, &t.GroupID, &t.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBaseTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

// CreateGroup clones a template group name under an authority.
func (r *Repository) CreateGroup(ctx context.Context, authorityID uuid.UUID, name string) (*IssueGroup, error) {
	const query = `
        INSERT INTO authority_issue_groups (authority_id, name)
        VALUES ($1, $2)
        RETURNING id, authority_id, name
    `

	var g IssueGroup
	err := r.pool.QueryRow(ctx, query, authorityID, name).Scan(&g.ID, &g.AuthorityID, &g.Name)
	if db.IsUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	g.IssueTypes = []string{}
	return &g, nil
}

// GetGroupByName fetches an authority's cloned group.
func (r *Repository) GetGroupByName(ctx context.Context, authorityID uuid.UUID, name string) (*IssueGroup, error) {
	const query = `
        SELECT id, authority_id, name
        FROM authority_issue_groups
        WHERE authority_id = $1 AND name = $2
    `

	var g IssueGroup
	if err := r.pool.QueryRow(ctx, query, authorityID, name).Scan(&g.ID, &g.AuthorityID, &g.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// DeleteGroup removes a cloned group; its types cascade in the database.
func (r *Repository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM authority_issue_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// CreateType clones a template type name under an authority's group.
func (r *Repository) CreateType(ctx context.Context, groupID uuid.UUID, name string) (*IssueType, error) {
	const query = `
        INSERT INTO authority_issue_types (group_id, name)
        VALUES ($1, $2)
        RETURNING id, group_id, name
    `

	var t IssueType
	err := r.pool.QueryRow(ctx, query, groupID, name).Scan(&t.ID, &t.GroupID, &t.Name)
	if db.IsUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTypeByID fetches a cloned type together with its owning group.
func (r *Repository) GetTypeByID(ctx context.Context, id uuid.UUID) (*IssueType, error) {
	const query = `
        SELECT t.id, t.group_id, t.name, g.id, g.authority_id, g.name
        FROM authority_issue_types t
        JOIN authority_issue_groups g ON g.id = t.group_id
        WHERE t.id = $1
    `
	return scanTypeWithGroup(r.pool.QueryRow(ctx, query, id))
}

// GetTypeByName fetches a cloned type by name within an authority.
func (r *Repository) GetTypeByName(ctx context.Context, authorityID uuid.UUID, name string) (*IssueType, error) {
	const query = `
        SELECT t.id, t.group_id, t.name, g.id, g.authority_id, g.name
        FROM authority_issue_types t
        JOIN authority_issue_groups g ON g.id = t.group_id
        WHERE g.authority_id = $1 AND t.name = $2
    `
	return scanTypeWithGroup(r.pool.QueryRow(ctx, query, authorityID, name))
}

// DeleteType removes a cloned type; reports referencing it are nulled by the
// database, never blocked.
func (r *Repository) DeleteType(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM authority_issue_types WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTypeNotFound
	}
	return nil
}

// ListGroups returns an authority's cloned groups with nested type names.
func (r *Repository) ListGroups(ctx context.Context, authorityID uuid.UUID) ([]IssueGroup, error) {
	const query = `
        SELECT g.id, g.authority_id, g.name,
               COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.id IS NOT NULL), '{}')
        FROM authority_issue_groups g
        LEFT JOIN authority_issue_types t ON t.group_id = g.id
        WHERE g.authority_id = $1
        GROUP BY g.id, g.authority_id, g.name
        ORDER BY g.name
    `

	rows, err := r.pool.Query(ctx, query, authorityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []IssueGroup{}
	for rows.Next() {
		var g IssueGroup
		if err := rows.Scan(&g.ID, &g.AuthorityID, &g.Name, &g.IssueTypes); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func scanTypeWithGroup(row pgx.Row) (*IssueType, error) {
	var t IssueType
	err := row.Scan(&t.ID, &t.GroupID, &t.Name, &t.Group.ID, &t.Group.AuthorityID, &t.Group.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}
