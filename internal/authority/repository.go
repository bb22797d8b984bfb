package authority

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

const authorityColumns = `
	id, name, ST_AsGeoJSON(boundary)::jsonb, authority_type, address,
	phone_number, email, website_url, access_code, created_at`

// Repository provides access to the authorities table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new authority. The boundary arrives as GeoJSON text and
// is parsed by PostGIS.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Authority, error) {
	query := `
        INSERT INTO authorities (name, boundary, authority_type, address,
            phone_number, email, website_url, access_code)
        VALUES ($1, ST_SetSRID(ST_GeomFromGeoJSON($2), 4326), $3, $4, $5, $6, $7, $8)
        RETURNING ` + authorityColumns

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Name), string(input.Boundary), input.AuthorityType,
		input.Address, input.PhoneNumber, input.Email, input.WebsiteURL, input.AccessCode)

	authority, err := scanAuthority(row)
	// an access-code collision bubbles up raw so the caller can retry with a
	// fresh code; a name collision is terminal
	if db.UniqueConstraint(err) == "authorities_name_key" {
		return nil, ErrNameTaken
	}
	return authority, err
}

// GetByID fetches a single authority.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Authority, error) {
	query := `SELECT ` + authorityColumns + ` FROM authorities WHERE id = $1`
	return scanAuthority(r.pool.QueryRow(ctx, query, id))
}

// GetByAccessCode resolves an authority by its join code.
func (r *Repository) GetByAccessCode(ctx context.Context, code string) (*Authority, error) {
	query := `SELECT ` + authorityColumns + ` FROM authorities WHERE access_code = $1`
	return scanAuthority(r.pool.QueryRow(ctx, query, strings.TrimSpace(code)))
}

// ResolveForPoint finds the authority whose boundary ring the point touches.
// Candidates are ordered by name so overlapping jurisdictions resolve
// deterministically.
//
// TODO: confirm with ops whether interior points should match (ST_Covers)
// before onboarding authorities with filled polygons; the mobile clients
// currently rely on boundary-touch behavior.
func (r *Repository) ResolveForPoint(ctx context.Context, lon, lat float64) (*Authority, error) {
	query := `
        SELECT ` + authorityColumns + `
        FROM authorities
        WHERE ST_Touches(boundary, ST_SetSRID(ST_MakePoint($1, $2), 4326))
        ORDER BY name
        LIMIT 1
    `
	return scanAuthority(r.pool.QueryRow(ctx, query, lon, lat))
}

// InRange reports whether any authority's boundary matches the point.
func (r *Repository) InRange(ctx context.Context, lon, lat float64) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM authorities
            WHERE ST_Touches(boundary, ST_SetSRID(ST_MakePoint($1, $2), 4326))
        )
    `
	var ok bool
	if err := r.pool.QueryRow(ctx, query, lon, lat).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// MatchesPoint reports whether one specific authority's boundary matches the
// point, using the same touch semantics as ResolveForPoint.
func (r *Repository) MatchesPoint(ctx context.Context, id uuid.UUID, lon, lat float64) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM authorities
            WHERE id = $1
              AND ST_Touches(boundary, ST_SetSRID(ST_MakePoint($2, $3), 4326))
        )
    `
	var ok bool
	if err := r.pool.QueryRow(ctx, query, id, lon, lat).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Update changes contact fields. Name uniqueness is enforced by the database.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Authority, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	set := func(column string, value *string) {
		if value != nil {
			setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
			args = append(args, strings.TrimSpace(*value))
			idx++
		}
	}

	set("name", input.Name)
	set("authority_type", input.AuthorityType)
	set("address", input.Address)
	set("phone_number", input.PhoneNumber)
	set("email", input.Email)
	set("website_url", input.WebsiteURL)

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE authorities
        SET %s
        WHERE id = $%d
        RETURNING `+authorityColumns, strings.Join(setParts, ", "), idx)

	row := r.pool.QueryRow(ctx, query, args...)
	authority, err := scanAuthority(row)
	if db.IsUniqueViolation(err) {
		return nil, ErrNameTaken
	}
	return authority, err
}

// SetAccessCode replaces the join code.
func (r *Repository) SetAccessCode(ctx context.Context, id uuid.UUID, code string) (*Authority, error) {
	query := `
        UPDATE authorities
        SET access_code = $1
        WHERE id = $2
        RETURNING ` + authorityColumns
	return scanAuthority(r.pool.QueryRow(ctx, query, code, id))
}

func scanAuthority(row pgx.Row) (*Authority, error) {
	var a Authority
	err := row.Scan(&a.ID, &a.Name, &a.Boundary, &a.AuthorityType, &a.Address,
		&a.PhoneNumber, &a.Email, &a.WebsiteURL, &a.AccessCode, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
