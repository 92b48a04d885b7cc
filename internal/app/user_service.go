package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/globedrop/ngo-directory/internal/domain"
	"github.com/globedrop/ngo-directory/internal/platform/logging"
	"github.com/globedrop/ngo-directory/internal/ports"
)

// UserService implements the user use cases.
type UserService struct {
	users  ports.UserRepository
	orgs   ports.OrganizationRepository
	logger *slog.Logger
}

// NewUserService creates the service. It panics if a repository is missing.
func NewUserService(users ports.UserRepository, orgs ports.OrganizationRepository, logger *slog.Logger) *UserService {
	if users == nil || orgs == nil {
		panic("app: user service requires user and organization repositories")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		users:  users,
		orgs:   orgs,
		logger: logger.With(slog.String("component", "app.UserService")),
	}
}

// FindOne returns the user matching filter.
func (s *UserService) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	if filter.IsZero() {
		return nil, domain.NewValidationError("filter", "id or email is required")
	}

	user, err := s.users.FindOne(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	return user, nil
}

// Create registers a user. The role defaults to member and a referenced
// organization must exist.
func (s *UserService) Create(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	if input.Role == "" {
		input.Role = domain.RoleMember
	}

	s.logger.DebugContext(ctx, "creating user", slog.String("role", string(input.Role)))

	if !input.Role.IsValid() {
		return nil, domain.NewValidationError("role", fmt.Sprintf("unknown role %q", input.Role))
	}

	if input.OrganizationID != "" {
		_, err := s.orgs.FindOne(ctx, domain.OrganizationFilter{ID: input.OrganizationID})
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationError("organization_id", "organization does not exist")
		}

		if err != nil {
			return nil, fmt.Errorf("checking organization: %w", err)
		}
	}

	user, err := s.users.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "user created", slog.String(logging.KeyUserID, user.ID))

	return user, nil
}

// List returns users matching the raw query.
func (s *UserService) List(ctx context.Context, query url.Values) ([]*domain.User, error) {
	users, err := s.users.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return users, nil
}
