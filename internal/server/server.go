package server

import (
	"context"

	"habitflow-payments/internal/handler"
	appmiddleware "habitflow-payments/internal/middleware"
	"habitflow-payments/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	webhookHandler *handler.WebhookHandler
	adminHandler   *handler.AdminHandler
	adminToken     string
}

func NewServer(reconciler service.ReconcilerService, adminService service.AdminService, webhookSecret, adminToken string) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		webhookHandler: handler.NewWebhookHandler(reconciler, webhookSecret),
		adminHandler:   handler.NewAdminHandler(adminService),
		adminToken:     adminToken,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- stripe webhook --------
	api.POST("/stripe/webhook", s.webhookHandler.StripeWebhook)

	// -------- support tooling --------
	admin := api.Group("/admin", appmiddleware.ServiceTokenAuth(s.adminToken))
	admin.GET("/orders", s.adminHandler.ListOrders)
	admin.GET("/enrollments", s.adminHandler.ListEnrollments)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
