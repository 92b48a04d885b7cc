// Package mocks provides testify mocks for the ports and application services.
package mocks

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/globedrop/ngo-directory/internal/domain"
)

// OrganizationRepository mocks ports.OrganizationRepository.
type OrganizationRepository struct {
	mock.Mock
}

// NewOrganizationRepository creates a mock that asserts its expectations on cleanup.
func NewOrganizationRepository(t *testing.T) *OrganizationRepository {
	t.Helper()

	m := &OrganizationRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *OrganizationRepository) FindOne(ctx context.Context, filter domain.OrganizationFilter) (*domain.Organization, error) {
	args := m.Called(ctx, filter)
	org, _ := args.Get(0).(*domain.Organization)

	return org, args.Error(1)
}

func (m *OrganizationRepository) Create(ctx context.Context, input domain.OrganizationInput) (*domain.Organization, error) {
	args := m.Called(ctx, input)
	org, _ := args.Get(0).(*domain.Organization)

	return org, args.Error(1)
}

func (m *OrganizationRepository) Update(ctx context.Context, id string, patch domain.OrganizationPatch) (*domain.Organization, error) {
	args := m.Called(ctx, id, patch)
	org, _ := args.Get(0).(*domain.Organization)

	return org, args.Error(1)
}

func (m *OrganizationRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OrganizationRepository) List(ctx context.Context, query url.Values) ([]*domain.Organization, error) {
	args := m.Called(ctx, query)
	orgs, _ := args.Get(0).([]*domain.Organization)

	return orgs, args.Error(1)
}

// UserRepository mocks ports.UserRepository.
type UserRepository struct {
	mock.Mock
}

// NewUserRepository creates a mock that asserts its expectations on cleanup.
func NewUserRepository(t *testing.T) *UserRepository {
	t.Helper()

	m := &UserRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *UserRepository) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	args := m.Called(ctx, filter)
	user, _ := args.Get(0).(*domain.User)

	return user, args.Error(1)
}

func (m *UserRepository) Create(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(0).(*domain.User)

	return user, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context, query url.Values) ([]*domain.User, error) {
	args := m.Called(ctx, query)
	users, _ := args.Get(0).([]*domain.User)

	return users, args.Error(1)
}

// Cache mocks ports.Cache.
type Cache struct {
	mock.Mock
}

// NewCache creates a mock that asserts its expectations on cleanup.
func NewCache(t *testing.T) *Cache {
	t.Helper()

	m := &Cache{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)

	return b, args.Error(1)
}

func (m *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	return m.Called(ctx, key, value, ttlSeconds).Error(0)
}

func (m *Cache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
