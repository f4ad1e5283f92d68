package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"trivio/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginHandler(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService())

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"username":"admin","password":"password123"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)
	assert.Contains(t, rec.Body.String(), `"hostId"`)
}

func TestLoginHandlerRejectsBadCredentials(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService())

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"username":"admin","password":"nope"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginHandlerRejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService())

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
