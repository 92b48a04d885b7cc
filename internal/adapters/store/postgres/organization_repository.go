package postgres

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/globedrop/ngo-directory/internal/domain"
)

const organizationColumns = "id::text, org_name, description, website, created_at, updated_at"

// OrganizationRepository implements ports.OrganizationRepository.
type OrganizationRepository struct {
	db DB
}

// NewOrganizationRepository creates a repository backed by db.
func NewOrganizationRepository(db DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// FindOne returns the organization matching every set field of filter.
func (r *OrganizationRepository) FindOne(ctx context.Context, filter domain.OrganizationFilter) (*domain.Organization, error) {
	var (
		conds []string
		args  []any
	)

	if filter.ID != "" {
		args = append(args, filter.ID)
		conds = append(conds, "id = $"+strconv.Itoa(len(args)))
	}

	if filter.Name != "" {
		args = append(args, filter.Name)
		conds = append(conds, "org_name = $"+strconv.Itoa(len(args)))
	}

	if len(conds) == 0 {
		return nil, domain.NewValidationError("", "organization filter is empty")
	}

	query := "SELECT " + organizationColumns + " FROM organizations WHERE " + strings.Join(conds, " AND ")

	org, err := scanOrganization(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "finding organization", "organization", filter.ID)
	}

	return org, nil
}

// Create inserts an organization.
func (r *OrganizationRepository) Create(ctx context.Context, input domain.OrganizationInput) (*domain.Organization, error) {
	const query = `INSERT INTO organizations (org_name, description, website)
		VALUES ($1, $2, $3)
		RETURNING ` + organizationColumns

	org, err := scanOrganization(r.db.QueryRow(ctx, query, input.Name, input.Description, input.Website))
	if err != nil {
		return nil, translate(err, "inserting organization", "organization", "")
	}

	return org, nil
}

// Update applies the set fields of patch. Nil fields keep their value.
func (r *OrganizationRepository) Update(ctx context.Context, id string, patch domain.OrganizationPatch) (*domain.Organization, error) {
	const query = `UPDATE organizations SET
			org_name    = COALESCE($2, org_name),
			description = COALESCE($3, description),
			website     = COALESCE($4, website),
			updated_at  = now()
		WHERE id = $1
		RETURNING ` + organizationColumns

	org, err := scanOrganization(r.db.QueryRow(ctx, query, id, patch.Name, patch.Description, patch.Website))
	if err != nil {
		return nil, translate(err, "updating organization", "organization", id)
	}

	return org, nil
}

// Delete removes the organization; its users keep existing without one.
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM organizations WHERE id = $1", id); err != nil {
		if err := translate(err, "deleting organization", "organization", id); !domain.IsNotFound(err) {
			return err
		}
	}

	return nil
}

// List returns organizations ordered by creation, filtered by org_name.
func (r *OrganizationRepository) List(ctx context.Context, q url.Values) ([]*domain.Organization, error) {
	const query = `SELECT ` + organizationColumns + ` FROM organizations
		WHERE ($1 = '' OR org_name = $1)
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`

	limit, skip := domain.PageFromQuery(q)

	rows, err := r.db.Query(ctx, query, q.Get("org_name"), limit, skip)
	if err != nil {
		return nil, translate(err, "listing organizations", "organization", "")
	}
	defer rows.Close()

	orgs := make([]*domain.Organization, 0)

	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, translate(err, "scanning organization", "organization", "")
		}

		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(err, "listing organizations", "organization", "")
	}

	return orgs, nil
}

func scanOrganization(row pgx.Row) (*domain.Organization, error) {
	var org domain.Organization

	err := row.Scan(&org.ID, &org.Name, &org.Description, &org.Website, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &org, nil
}
