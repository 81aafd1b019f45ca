package repository

import (
	"context"
	"errors"

	"habitflow-payments/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "core-course", Name: "Habitflow Core Course", CourseName: "Core Course", MarketingTags: "paid_customer,core_course", Price: 4900, Currency: "usd"},
		{ID: "cycle-coaching", Name: "Cycle Coaching Program", CourseName: "Cycle Coaching", MarketingTags: "paid_customer,coaching", Price: 19900, Currency: "usd"},
		{ID: "premium-monthly", Name: "Habitflow Premium", CourseName: "Premium Membership", MarketingTags: "paid_customer,premium", Price: 999, Currency: "usd"},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

// FindByID returns (nil, nil) for unknown products so the notifier can fall
// back to its generic tags.
func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &product, nil
}
