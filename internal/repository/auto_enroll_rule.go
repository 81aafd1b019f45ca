package repository

import (
	"context"
	"errors"

	"habitflow-payments/internal/model"

	"gorm.io/gorm"
)

type AutoEnrollRuleRepository interface {
	FindByProductID(ctx context.Context, productID string) (*model.AutoEnrollRule, error)
}

type autoEnrollRuleRepoImpl struct {
	db *gorm.DB
}

func NewAutoEnrollRuleRepository(db *gorm.DB) AutoEnrollRuleRepository {
	return &autoEnrollRuleRepoImpl{
		db: db,
	}
}

// FindByProductID returns (nil, nil) when the product has no default cohort.
func (r *autoEnrollRuleRepoImpl) FindByProductID(ctx context.Context, productID string) (*model.AutoEnrollRule, error) {
	var rule model.AutoEnrollRule
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&rule).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &rule, nil
}
