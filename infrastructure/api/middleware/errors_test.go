package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(404, "product not found", nil)

	assert.Equal(t, 404, err.Code())
	assert.Equal(t, "product not found", err.Message())
	assert.Equal(t, "api error 404: product not found", err.Error())

	cause := errors.New("row missing")
	err = NewAPIError(500, "internal error", cause)
	assert.Equal(t, "api error 500: internal error: row missing", err.Error())
	assert.Equal(t, cause, err.Unwrap())
}

func TestAuthenticationError_Matching(t *testing.T) {
	err := NewAuthenticationError("token expired")
	assert.Equal(t, "authentication failed: token expired", err.Error())

	wrapped := fmt.Errorf("request failed: %w", err)
	assert.ErrorIs(t, wrapped, ErrAuthentication)

	var target *AuthenticationError
	assert.ErrorAs(t, wrapped, &target)
}

func TestServerError_Matching(t *testing.T) {
	err := NewServerError(503, "vector store unavailable")

	assert.Equal(t, 503, err.StatusCode())
	assert.Equal(t, "server error 503: vector store unavailable", err.Error())
	assert.ErrorIs(t, err, ErrServer)
}

func TestWriteError_StatusMapping(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	w := httptest.NewRecorder()
	WriteError(w, req, NewAPIError(404, "product not found", nil), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"product not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	WriteError(w, req, NewServerError(503, "down"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	WriteError(w, req, NewAuthenticationError("bad key"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	WriteError(w, req, errors.New("boom"), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, w.Body.String())
}
