package postgres

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/globedrop/ngo-directory/internal/domain"
)

const userColumns = "id::text, email, first_name, last_name, role, COALESCE(organization_id::text, ''), created_at, updated_at"

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a repository backed by db.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindOne returns the user matching filter. Emails match case-insensitively.
func (r *UserRepository) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	var (
		conds []string
		args  []any
	)

	if filter.ID != "" {
		args = append(args, filter.ID)
		conds = append(conds, "id = $"+strconv.Itoa(len(args)))
	}

	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, "lower(email) = lower($"+strconv.Itoa(len(args))+")")
	}

	if len(conds) == 0 {
		return nil, domain.NewValidationError("", "user filter is empty")
	}

	query := "SELECT " + userColumns + " FROM users WHERE " + strings.Join(conds, " AND ")

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "finding user", "user", filter.ID)
	}

	return user, nil
}

// Create inserts a user. An unknown organization_id is a validation error.
func (r *UserRepository) Create(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	const query = `INSERT INTO users (email, first_name, last_name, role, organization_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query,
		input.Email, input.FirstName, input.LastName, string(input.Role), input.OrganizationID))
	if err != nil {
		return nil, translate(err, "inserting user", "user", "")
	}

	return user, nil
}

// List returns users ordered by creation, filtered by role and organization_id.
func (r *UserRepository) List(ctx context.Context, q url.Values) ([]*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR organization_id::text = $2)
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4`

	limit, skip := domain.PageFromQuery(q)

	rows, err := r.db.Query(ctx, query, q.Get("role"), q.Get("organization_id"), limit, skip)
	if err != nil {
		return nil, translate(err, "listing users", "user", "")
	}
	defer rows.Close()

	users := make([]*domain.User, 0)

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translate(err, "scanning user", "user", "")
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(err, "listing users", "user", "")
	}

	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		role string
	)

	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &role,
		&user.OrganizationID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	user.Role = domain.Role(role)

	return &user, nil
}
