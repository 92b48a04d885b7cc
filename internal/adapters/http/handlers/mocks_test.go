package handlers

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"

	"github.com/globedrop/ngo-directory/internal/app"
	"github.com/globedrop/ngo-directory/internal/domain"
)

type mockOrganizationService struct {
	mock.Mock
}

func (m *mockOrganizationService) FindOne(ctx context.Context, filter domain.OrganizationFilter, opts app.FindOptions) (*domain.Organization, error) {
	args := m.Called(ctx, filter, opts)
	org, _ := args.Get(0).(*domain.Organization)

	return org, args.Error(1)
}

func (m *mockOrganizationService) Create(ctx context.Context, input domain.OrganizationInput) (*domain.Organization, error) {
	args := m.Called(ctx, input)
	org, _ := args.Get(0).(*domain.Organization)

	return org, args.Error(1)
}

func (m *mockOrganizationService) FindOneAndUpdate(ctx context.Context, filter domain.OrganizationFilter, patch domain.OrganizationPatch) (*domain.Organization, error) {
	args := m.Called(ctx, filter, patch)
	org, _ := args.Get(0).(*domain.Organization)

	return org, args.Error(1)
}

func (m *mockOrganizationService) Delete(ctx context.Context, filter domain.OrganizationFilter) error {
	return m.Called(ctx, filter).Error(0)
}

func (m *mockOrganizationService) List(ctx context.Context, query url.Values) ([]*domain.Organization, error) {
	args := m.Called(ctx, query)
	orgs, _ := args.Get(0).([]*domain.Organization)

	return orgs, args.Error(1)
}

func (m *mockOrganizationService) FindAdminsByOrganization(ctx context.Context, query url.Values) ([]*domain.User, error) {
	args := m.Called(ctx, query)
	users, _ := args.Get(0).([]*domain.User)

	return users, args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	args := m.Called(ctx, filter)
	user, _ := args.Get(0).(*domain.User)

	return user, args.Error(1)
}

func (m *mockUserService) Create(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(0).(*domain.User)

	return user, args.Error(1)
}

func (m *mockUserService) List(ctx context.Context, query url.Values) ([]*domain.User, error) {
	args := m.Called(ctx, query)
	users, _ := args.Get(0).([]*domain.User)

	return users, args.Error(1)
}
