package repository

import (
	"context"
	"errors"
	"time"

	"habitflow-payments/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Order, error)
	MarkRefunded(ctx context.Context, key string, refundAmount int64) (*model.Order, error)
	List(ctx context.Context, limit int) ([]*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByIdempotencyKey returns (nil, nil) when no ledger row exists for key.
func (r *orderRepoImpl) FindByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) MarkRefunded(ctx context.Context, key string, refundAmount int64) (*model.Order, error) {
	var order model.Order
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Order{}).
			Where("idempotency_key = ?", key).
			Updates(map[string]interface{}{
				"status":        model.OrderStatusRefunded,
				"refund_amount": refundAmount,
				"refunded_at":   now,
				"updated_at":    now,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("idempotency_key = ?", key).First(&order).Error
	})

	return &order, err
}

func (r *orderRepoImpl) List(ctx context.Context, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}
