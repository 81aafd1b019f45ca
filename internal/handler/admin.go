package handler

import (
	"net/http"
	"strconv"

	"habitflow-payments/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	orders, err := h.adminService.ListOrders(ctx, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) ListEnrollments(c echo.Context) error {
	ctx := c.Request().Context()

	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing user_id query param")
	}

	enrollments, err := h.adminService.ListEnrollments(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, enrollments)
}
