// Package app contains application services that orchestrate use cases.
// Services depend on port interfaces and never on HTTP or storage details.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/globedrop/ngo-directory/internal/domain"
	"github.com/globedrop/ngo-directory/internal/platform/logging"
	"github.com/globedrop/ngo-directory/internal/ports"
)

const organizationCachePrefix = "organization:"

// FindOptions controls how a single organization is loaded.
type FindOptions struct {
	// Populate loads the organization's admins alongside it.
	Populate bool
}

// OrganizationServiceConfig holds the dependencies of OrganizationService.
// Organizations and Users are required; Cache and Logger are optional.
type OrganizationServiceConfig struct {
	Organizations   ports.OrganizationRepository
	Users           ports.UserRepository
	Cache           ports.Cache
	CacheTTLSeconds int
	Logger          *slog.Logger
}

// OrganizationService implements the organization use cases.
//
// Example usage:
//
//	svc := app.NewOrganizationService(app.OrganizationServiceConfig{
//		Organizations: orgRepo,
//		Users:         userRepo,
//	})
//	org, err := svc.FindOne(ctx, domain.OrganizationFilter{ID: id}, app.FindOptions{Populate: true})
type OrganizationService struct {
	orgs     ports.OrganizationRepository
	users    ports.UserRepository
	cache    ports.Cache
	cacheTTL int
	logger   *slog.Logger
}

// NewOrganizationService creates the service. It panics if a repository is missing.
func NewOrganizationService(cfg OrganizationServiceConfig) *OrganizationService {
	if cfg.Organizations == nil || cfg.Users == nil {
		panic("app: organization service requires organization and user repositories")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OrganizationService{
		orgs:     cfg.Organizations,
		users:    cfg.Users,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTLSeconds,
		logger:   logger.With(slog.String("component", "app.OrganizationService")),
	}
}

// FindOne returns the organization matching filter.
// Returns domain.ErrNotFound when nothing matches.
func (s *OrganizationService) FindOne(
	ctx context.Context,
	filter domain.OrganizationFilter,
	opts FindOptions,
) (*domain.Organization, error) {
	if filter.IsZero() {
		return nil, domain.NewValidationError("filter", "id or org_name is required")
	}

	if !opts.Populate {
		return s.findOne(ctx, filter)
	}

	// Without an id the admins query has nothing to key on until the organization is loaded.
	if filter.ID == "" {
		org, err := s.findOne(ctx, filter)
		if err != nil {
			return nil, err
		}

		admins, err := s.allAdmins(ctx, org.ID)
		if err != nil {
			return nil, err
		}

		org.Admins = admins

		return org, nil
	}

	return s.populated(ctx, filter)
}

// Create inserts a new organization.
func (s *OrganizationService) Create(ctx context.Context, input domain.OrganizationInput) (*domain.Organization, error) {
	org, err := s.orgs.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "organization created",
		slog.String(logging.KeyOrganizationID, org.ID))

	return org, nil
}

// FindOneAndUpdate applies patch to the organization selected by filter and
// returns the updated organization.
func (s *OrganizationService) FindOneAndUpdate(
	ctx context.Context,
	filter domain.OrganizationFilter,
	patch domain.OrganizationPatch,
) (*domain.Organization, error) {
	id := filter.ID
	if id == "" {
		current, err := s.findOne(ctx, filter)
		if err != nil {
			return nil, err
		}

		id = current.ID
	}

	org, err := s.orgs.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating organization: %w", err)
	}

	s.invalidate(ctx, id)

	return org, nil
}

// Delete removes the organization selected by filter. Deleting a missing
// organization succeeds.
func (s *OrganizationService) Delete(ctx context.Context, filter domain.OrganizationFilter) error {
	if filter.ID == "" {
		return domain.NewValidationError("id", "is required")
	}

	if err := s.orgs.Delete(ctx, filter.ID); err != nil {
		return fmt.Errorf("deleting organization: %w", err)
	}

	s.invalidate(ctx, filter.ID)

	logging.FromContext(ctx).InfoContext(ctx, "organization deleted",
		slog.String(logging.KeyOrganizationID, filter.ID))

	return nil
}

// List returns organizations matching the raw query.
func (s *OrganizationService) List(ctx context.Context, query url.Values) ([]*domain.Organization, error) {
	orgs, err := s.orgs.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}

	return orgs, nil
}

// FindAdminsByOrganization returns admin users. The query key "organization"
// narrows the result to one organization.
func (s *OrganizationService) FindAdminsByOrganization(ctx context.Context, query url.Values) ([]*domain.User, error) {
	return s.listAdmins(ctx, query.Get("organization"), query)
}

func (s *OrganizationService) listAdmins(ctx context.Context, orgID string, query url.Values) ([]*domain.User, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}

	q.Del("organization")
	q.Set("role", string(domain.RoleAdmin))

	if orgID != "" {
		q.Set("organization_id", orgID)
	}

	admins, err := s.users.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}

	return admins, nil
}

// allAdmins pages through every admin of orgID so populate is not cut at one page.
func (s *OrganizationService) allAdmins(ctx context.Context, orgID string) ([]*domain.User, error) {
	admins := make([]*domain.User, 0)

	for skip := 0; ; skip += domain.MaxLimit {
		page, err := s.listAdmins(ctx, orgID, url.Values{
			"limit": {strconv.Itoa(domain.MaxLimit)},
			"skip":  {strconv.Itoa(skip)},
		})
		if err != nil {
			return nil, err
		}

		admins = append(admins, page...)

		if len(page) < domain.MaxLimit {
			return admins, nil
		}
	}
}

func (s *OrganizationService) findOne(ctx context.Context, filter domain.OrganizationFilter) (*domain.Organization, error) {
	cacheable := s.cache != nil && filter.ID != "" && filter.Name == ""

	if cacheable {
		if org, ok := s.fromCache(ctx, filter.ID); ok {
			return org, nil
		}
	}

	org, err := s.orgs.FindOne(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("finding organization: %w", err)
	}

	if cacheable {
		s.toCache(ctx, org)
	}

	return org, nil
}

func (s *OrganizationService) fromCache(ctx context.Context, id string) (*domain.Organization, bool) {
	raw, err := s.cache.Get(ctx, organizationCachePrefix+id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "cache read failed", slog.String("error", err.Error()))
		}

		return nil, false
	}

	var org domain.Organization
	if err := json.Unmarshal(raw, &org); err != nil {
		s.logger.WarnContext(ctx, "cache entry corrupt", slog.String("error", err.Error()))
		return nil, false
	}

	return &org, true
}

func (s *OrganizationService) toCache(ctx context.Context, org *domain.Organization) {
	raw, err := json.Marshal(org)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, organizationCachePrefix+org.ID, raw, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", slog.String("error", err.Error()))
	}
}

func (s *OrganizationService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, organizationCachePrefix+id); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", slog.String("error", err.Error()))
	}
}
