package repository

import (
	"context"
	"errors"

	"habitflow-payments/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	Find(ctx context.Context, userID, productID string) (*model.Enrollment, error)
	Cancel(ctx context.Context, userID, productID string) error
	Delete(ctx context.Context, userID, productID string) error
	ListByUser(ctx context.Context, userID string) ([]*model.Enrollment, error)
}

type enrollmentRepoImpl struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepoImpl{
		db: db,
	}
}

func (r *enrollmentRepoImpl) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

// Find returns (nil, nil) when the user holds no enrollment for the product.
func (r *enrollmentRepoImpl) Find(ctx context.Context, userID, productID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&enrollment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &enrollment, nil
}

func (r *enrollmentRepoImpl) Cancel(ctx context.Context, userID, productID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("status", model.EnrollmentStatusCancelled).
		Error
}

func (r *enrollmentRepoImpl) Delete(ctx context.Context, userID, productID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.Enrollment{}).
		Error
}

func (r *enrollmentRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Enrollment, error) {
	var enrollments []*model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&enrollments).
		Error

	if err != nil {
		return nil, err
	}

	return enrollments, nil
}
