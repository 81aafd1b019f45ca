package service

import (
	"context"

	"habitflow-payments/internal/model"
	"habitflow-payments/internal/repository"
)

// AdminService backs the support read endpoints used for stuck-order triage.
type AdminService interface {
	ListOrders(ctx context.Context, limit int) ([]*model.Order, error)
	ListEnrollments(ctx context.Context, userID string) ([]*model.Enrollment, error)
}

type adminServiceImpl struct {
	orderRepo      repository.OrderRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewAdminService(
	orderRepo repository.OrderRepository,
	enrollmentRepo repository.EnrollmentRepository,
) AdminService {
	return &adminServiceImpl{
		orderRepo:      orderRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *adminServiceImpl) ListOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.orderRepo.List(ctx, limit)
}

func (s *adminServiceImpl) ListEnrollments(ctx context.Context, userID string) ([]*model.Enrollment, error) {
	return s.enrollmentRepo.ListByUser(ctx, userID)
}
