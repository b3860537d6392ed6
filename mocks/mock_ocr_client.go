package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"intakedoc/internal/domain"
	"intakedoc/internal/port"
)

// MockOCRClient is a mock implementation of port.OCRClient.
type MockOCRClient struct {
	mock.Mock
}

func (m *MockOCRClient) Extract(ctx context.Context, in port.ExtractInput) ([]domain.Element, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Element), args.Error(1)
}
