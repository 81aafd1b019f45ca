package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func callWithToken(t *testing.T, configured, sent string) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	if sent != "" {
		req.Header.Set("Authorization", "Bearer "+sent)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	return ServiceTokenAuth(configured)(next)(c)
}

func TestServiceTokenAuthAcceptsMatchingToken(t *testing.T) {
	assert.NoError(t, callWithToken(t, "secret-token", "secret-token"))
}

func TestServiceTokenAuthRejectsWrongToken(t *testing.T) {
	err := callWithToken(t, "secret-token", "other-token")
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestServiceTokenAuthRejectsMissingToken(t *testing.T) {
	err := callWithToken(t, "secret-token", "")
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestServiceTokenAuthUnconfigured(t *testing.T) {
	err := callWithToken(t, "", "anything")
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
}
