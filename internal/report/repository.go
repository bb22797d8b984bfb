package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// publicRadiusMeters is the fixed 10-mile radius of the public report feed.
const publicRadiusMeters = 16093.4

const reportColumns = `
	r.id, r.authority_id, r.report_type_id, t.name,
	ST_X(r.location), ST_Y(r.location),
	r.details, r.nearest_address, r.sender_email, r.sender_name, r.sender_phone,
	r.priority, r.state, r.created_at`

const reportFrom = `
	FROM reports r
	LEFT JOIN authority_issue_types t ON t.id = r.report_type_id`

// Repository provides access to the reports table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create persists a new report with its point location.
func (r *Repository) Create(ctx context.Context, authorityID uuid.UUID, input CreateInput) (*Report, error) {
	query := `
        WITH inserted AS (
            INSERT INTO reports
                (authority_id, report_type_id, location, details, nearest_address,
                 sender_email, sender_name, sender_phone)
            VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5, $6, $7, $8, $9)
            RETURNING *
        )
        SELECT ` + strings.ReplaceAll(reportColumns, "r.", "i.") + `
        FROM inserted i
        LEFT JOIN authority_issue_types t ON t.id = i.report_type_id
    `

	row := r.pool.QueryRow(ctx, query,
		authorityID,
		input.ReportTypeID,
		input.Longitude,
		input.Latitude,
		strings.TrimSpace(input.Details),
		strings.TrimSpace(input.NearestAddress),
		strings.ToLower(strings.TrimSpace(input.SenderEmail)),
		strings.TrimSpace(input.SenderName),
		strings.TrimSpace(input.SenderPhone),
	)
	return scanReport(row)
}

// GetByID fetches a single report.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	query := `SELECT ` + reportColumns + reportFrom + ` WHERE r.id = $1`
	return scanReport(r.pool.QueryRow(ctx, query, id))
}

// ListNear returns every report within the public radius of a point,
// regardless of jurisdiction boundaries. Pure distance query.
func (r *Repository) ListNear(ctx context.Context, lon, lat float64) ([]Report, error) {
	query := `
        SELECT ` + reportColumns + reportFrom + `
        WHERE ST_DWithin(r.location::geography,
                         ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
                         $3)
        ORDER BY r.created_at DESC
    `
	return r.list(ctx, query, lon, lat, publicRadiusMeters)
}

// ListForAuthority returns an authority's reports, newest first.
func (r *Repository) ListForAuthority(ctx context.Context, authorityID uuid.UUID) ([]Report, error) {
	query := `
        SELECT ` + reportColumns + reportFrom + `
        WHERE r.authority_id = $1
        ORDER BY r.created_at DESC
    `
	return r.list(ctx, query, authorityID)
}

// Update changes the triage fields only.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Report, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Priority != nil {
		setParts = append(setParts, fmt.Sprintf("priority = $%d", idx))
		args = append(args, *input.Priority)
		idx++
	}
	if input.State != nil {
		setParts = append(setParts, fmt.Sprintf("state = $%d", idx))
		args = append(args, *input.State)
		idx++
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
        WITH updated AS (
            UPDATE reports SET %s WHERE id = $%d
            RETURNING *
        )
        SELECT `+strings.ReplaceAll(reportColumns, "r.", "u.")+`
        FROM updated u
        LEFT JOIN authority_issue_types t ON t.id = u.report_type_id
    `, strings.Join(setParts, ", "), idx)

	return scanReport(r.pool.QueryRow(ctx, query, args...))
}

// Delete removes a report permanently.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Report, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.AuthorityID, &rep.ReportTypeID, &rep.ReportTypeName,
		&rep.Longitude, &rep.Latitude, &rep.Details, &rep.NearestAddress,
		&rep.SenderEmail, &rep.SenderName, &rep.SenderPhone,
		&rep.Priority, &rep.State, &rep.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}
