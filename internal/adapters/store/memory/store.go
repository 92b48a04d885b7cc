// Package memory provides an in-process store for local runs and tests.
// Data is lost on restart.
package memory

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/globedrop/ngo-directory/internal/domain"
)

// Store holds organizations and users in insertion order.
type Store struct {
	mu sync.RWMutex

	orgs     map[string]domain.Organization
	orgOrder []string

	users     map[string]domain.User
	userOrder []string

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		orgs:  make(map[string]domain.Organization),
		users: make(map[string]domain.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Organizations returns the organization repository view of the store.
func (s *Store) Organizations() *OrganizationRepository {
	return &OrganizationRepository{store: s}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "memory"
}

// Check implements ports.HealthChecker. The store is always available.
func (s *Store) Check(context.Context) error {
	return nil
}

// OrganizationRepository implements ports.OrganizationRepository.
type OrganizationRepository struct {
	store *Store
}

// FindOne returns a copy of the organization matching filter.
func (r *OrganizationRepository) FindOne(ctx context.Context, filter domain.OrganizationFilter) (*domain.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	org, ok := r.store.findOrganization(filter)
	if !ok {
		return nil, domain.NewNotFoundError("organization", filter.ID)
	}

	return &org, nil
}

// Create inserts an organization.
func (r *OrganizationRepository) Create(ctx context.Context, input domain.OrganizationInput) (*domain.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.findOrganization(domain.OrganizationFilter{Name: input.Name}); taken {
		return nil, domain.NewConflictError("organization", "org_name", input.Name)
	}

	now := r.store.now()
	org := domain.Organization{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Website:     input.Website,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.store.orgs[org.ID] = org
	r.store.orgOrder = append(r.store.orgOrder, org.ID)

	return &org, nil
}

// Update applies patch to the organization with the given id.
func (r *OrganizationRepository) Update(ctx context.Context, id string, patch domain.OrganizationPatch) (*domain.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id = domain.CanonicalID(id)

	org, ok := r.store.orgs[id]
	if !ok {
		return nil, domain.NewNotFoundError("organization", id)
	}

	if patch.Name != nil && *patch.Name != org.Name {
		if _, taken := r.store.findOrganization(domain.OrganizationFilter{Name: *patch.Name}); taken {
			return nil, domain.NewConflictError("organization", "org_name", *patch.Name)
		}
	}

	patch.Apply(&org)
	org.UpdatedAt = r.store.now()
	r.store.orgs[id] = org

	return &org, nil
}

// Delete removes the organization and detaches its users.
// Missing ids are ignored.
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id = domain.CanonicalID(id)

	if _, ok := r.store.orgs[id]; !ok {
		return nil
	}

	delete(r.store.orgs, id)
	r.store.orgOrder = removeID(r.store.orgOrder, id)

	// Members stay in the directory without an organization.
	for userID, user := range r.store.users {
		if user.OrganizationID == id {
			user.OrganizationID = ""
			r.store.users[userID] = user
		}
	}

	return nil
}

// List returns organizations filtered by org_name and paged by limit/skip.
func (r *OrganizationRepository) List(ctx context.Context, query url.Values) ([]*domain.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	name := query.Get("org_name")

	var matched []*domain.Organization

	for _, id := range r.store.orgOrder {
		org := r.store.orgs[id]
		if name != "" && org.Name != name {
			continue
		}

		matched = append(matched, &org)
	}

	return page(matched, query), nil
}

// findOrganization must be called with the lock held.
func (s *Store) findOrganization(filter domain.OrganizationFilter) (domain.Organization, bool) {
	if filter.ID != "" {
		org, ok := s.orgs[domain.CanonicalID(filter.ID)]
		if !ok || (filter.Name != "" && org.Name != filter.Name) {
			return domain.Organization{}, false
		}

		return org, true
	}

	for _, id := range s.orgOrder {
		if org := s.orgs[id]; org.Name == filter.Name {
			return org, true
		}
	}

	return domain.Organization{}, false
}

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	store *Store
}

// FindOne returns a copy of the user matching filter.
func (r *UserRepository) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if filter.ID != "" {
		user, ok := r.store.users[domain.CanonicalID(filter.ID)]
		if !ok || (filter.Email != "" && !strings.EqualFold(user.Email, filter.Email)) {
			return nil, domain.NewNotFoundError("user", filter.ID)
		}

		return &user, nil
	}

	if user, ok := r.store.findUserByEmail(filter.Email); ok {
		return &user, nil
	}

	return nil, domain.NewNotFoundError("user", "")
}

// Create inserts a user. Emails are compared case-insensitively.
func (r *UserRepository) Create(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.findUserByEmail(input.Email); taken {
		return nil, domain.NewConflictError("user", "email", input.Email)
	}

	now := r.store.now()
	user := domain.User{
		ID:             uuid.New().String(),
		Email:          input.Email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Role:           input.Role,
		OrganizationID: domain.CanonicalID(input.OrganizationID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	r.store.users[user.ID] = user
	r.store.userOrder = append(r.store.userOrder, user.ID)

	return &user, nil
}

// List returns users filtered by role and organization_id.
func (r *UserRepository) List(ctx context.Context, query url.Values) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	role := query.Get("role")
	orgID := domain.CanonicalID(query.Get("organization_id"))

	var matched []*domain.User

	for _, id := range r.store.userOrder {
		user := r.store.users[id]
		if role != "" && string(user.Role) != role {
			continue
		}

		if orgID != "" && user.OrganizationID != orgID {
			continue
		}

		matched = append(matched, &user)
	}

	return page(matched, query), nil
}

func (s *Store) findUserByEmail(email string) (domain.User, bool) {
	for _, id := range s.userOrder {
		if user := s.users[id]; strings.EqualFold(user.Email, email) {
			return user, true
		}
	}

	return domain.User{}, false
}

func page[T any](items []T, query url.Values) []T {
	limit, skip := domain.PageFromQuery(query)
	if skip >= len(items) {
		return []T{}
	}

	items = items[skip:]
	if len(items) > limit {
		items = items[:limit]
	}

	return items
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}

	return ids
}
