package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"habitflow-payments/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
)

type noopReconciler struct{}

func (noopReconciler) HandleEvent(ctx context.Context, event *stripe.Event) (bool, error) {
	return false, nil
}

type noopAdminService struct{}

func (noopAdminService) ListOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	return nil, nil
}

func (noopAdminService) ListEnrollments(ctx context.Context, userID string) ([]*model.Enrollment, error) {
	return nil, nil
}

func newTestServer() *Server {
	return NewServer(noopReconciler{}, noopAdminService{}, "", "admin-token")
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShutdownHonorsContext(t *testing.T) {
	s := newTestServer()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, s.Shutdown(ctx))
}
