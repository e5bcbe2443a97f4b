package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAPI is a mock implementation of gateway.API.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Get(ctx context.Context, path string, out any) error {
	args := m.Called(path, out)
	return args.Error(0)
}

func (m *MockAPI) Post(ctx context.Context, path string, body, out any) error {
	args := m.Called(path, body, out)
	return args.Error(0)
}

func (m *MockAPI) Patch(ctx context.Context, path string, body, out any) error {
	args := m.Called(path, body, out)
	return args.Error(0)
}

func (m *MockAPI) Delete(ctx context.Context, path string, out any) error {
	args := m.Called(path, out)
	return args.Error(0)
}

func (m *MockAPI) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, filePath string, out any) error {
	args := m.Called(path, fields, fileField, filePath, out)
	return args.Error(0)
}
