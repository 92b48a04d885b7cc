// Package ports defines the contracts between the application layer and
// its adapters. Methods take a context first and speak in domain types.
package ports

import (
	"context"
	"net/url"

	"github.com/globedrop/ngo-directory/internal/domain"
)

// OrganizationRepository persists organizations.
type OrganizationRepository interface {
	// FindOne returns the organization matching filter.
	// Returns domain.ErrNotFound if nothing matches.
	FindOne(ctx context.Context, filter domain.OrganizationFilter) (*domain.Organization, error)

	// Create inserts an organization and returns it with id and timestamps set.
	// Returns domain.ErrConflict if the name is already taken.
	Create(ctx context.Context, input domain.OrganizationInput) (*domain.Organization, error)

	// Update applies patch to the organization with the given id.
	// Returns domain.ErrNotFound or domain.ErrConflict.
	Update(ctx context.Context, id string, patch domain.OrganizationPatch) (*domain.Organization, error)

	// Delete removes the organization. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns organizations matching the raw query (org_name, limit, skip).
	List(ctx context.Context, query url.Values) ([]*domain.Organization, error)
}

// UserRepository persists users.
type UserRepository interface {
	// FindOne returns the user matching filter.
	// Returns domain.ErrNotFound if nothing matches.
	FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error)

	// Create inserts a user. Returns domain.ErrConflict if the email is taken.
	Create(ctx context.Context, input domain.UserInput) (*domain.User, error)

	// List returns users matching the raw query (role, organization_id, limit, skip).
	List(ctx context.Context, query url.Values) ([]*domain.User, error)
}

// Cache stores serialized values by key.
// Implementations may use Redis or an in-process map.
type Cache interface {
	// Get returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value with the given TTL in seconds. Zero means no expiry.
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
