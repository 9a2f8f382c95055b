package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/services"
	pkghttp "github.com/BradenHooton/roster/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc func(ctx context.Context, login, password, ipAddress string) (*services.AuthResponse, error)
}

func (m *MockAuthService) Login(ctx context.Context, login, password, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, login, password, ipAddress)
	}
	return nil, models.ErrUnauthorized
}

// MockAccountService implements AccountService for testing
type MockAccountService struct {
	ListPageFunc        func(ctx context.Context, pageIndex, pageSize int, sort []models.SortKey, criteria models.FilterCriteria) (*models.Page[*models.Account], error)
	DefaultPageSizeFunc func() int
}

func (m *MockAccountService) ListPage(ctx context.Context, pageIndex, pageSize int, sort []models.SortKey, criteria models.FilterCriteria) (*models.Page[*models.Account], error) {
	if m.ListPageFunc != nil {
		return m.ListPageFunc(ctx, pageIndex, pageSize, sort, criteria)
	}
	return &models.Page[*models.Account]{Items: []*models.Account{}, Page: pageIndex, Size: pageSize}, nil
}

func (m *MockAccountService) Roles() []models.Role {
	return models.Roles()
}

func (m *MockAccountService) DefaultPageSize() int {
	if m.DefaultPageSizeFunc != nil {
		return m.DefaultPageSizeFunc()
	}
	return 50
}
