package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cbpdash/internal/dataprocessing"
)

// MockSource is a mock dataprocessing.Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*dataprocessing.Dataset)
	return ds, args.Error(1)
}
