package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/globedrop/ngo-directory/internal/ports"
)

// HealthRegistry mocks ports.HealthRegistry.
type HealthRegistry struct {
	mock.Mock
}

// NewHealthRegistry creates a mock that asserts its expectations on cleanup.
func NewHealthRegistry(t *testing.T) *HealthRegistry {
	t.Helper()

	m := &HealthRegistry{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *HealthRegistry) Register(checker ports.HealthChecker) error {
	return m.Called(checker).Error(0)
}

func (m *HealthRegistry) CheckAll(ctx context.Context) *ports.HealthResult {
	result, _ := m.Called(ctx).Get(0).(*ports.HealthResult)
	return result
}
