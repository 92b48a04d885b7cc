package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/globedrop/ngo-directory/internal/domain"
)

// populated loads the organization with id and its admins side by side.
// The first failure cancels the other load and is returned unwrapped, so a
// missing organization still reads as domain.ErrNotFound.
func (s *OrganizationService) populated(ctx context.Context, filter domain.OrganizationFilter) (*domain.Organization, error) {
	var (
		org    *domain.Organization
		admins []*domain.User
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		org, err = s.findOne(gctx, filter)
		return err
	})

	g.Go(func() (err error) {
		admins, err = s.allAdmins(gctx, filter.ID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	org.Admins = admins

	return org, nil
}
