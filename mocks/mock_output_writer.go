package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockOutputWriter is a mock implementation of port.OutputWriter.
type MockOutputWriter struct {
	mock.Mock
}

func (m *MockOutputWriter) Write(ctx context.Context, name string, markdown string) (string, error) {
	args := m.Called(ctx, name, markdown)
	return args.String(0), args.Error(1)
}
