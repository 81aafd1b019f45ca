package repository

import (
	"context"
	"errors"
	"time"

	"habitflow-payments/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionStateRepository interface {
	Upsert(ctx context.Context, state *model.SubscriptionState) error
	Get(ctx context.Context, userID string) (*model.SubscriptionState, error)
}

type subscriptionStateRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionStateRepository(db *gorm.DB) SubscriptionStateRepository {
	return &subscriptionStateRepoImpl{
		db: db,
	}
}

// Upsert replaces the whole row; the snapshot has no history and the latest
// event wins.
func (r *subscriptionStateRepoImpl) Upsert(ctx context.Context, state *model.SubscriptionState) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":                 state.Status,
			"platform":               state.Platform,
			"stripe_subscription_id": state.StripeSubscriptionID,
			"stripe_customer_id":     state.StripeCustomerID,
			"expires_at":             state.ExpiresAt,
			"trial_ends_at":          state.TrialEndsAt,
			"updated_at":             time.Now(),
		}),
	}).Create(state).Error
}

func (r *subscriptionStateRepoImpl) Get(ctx context.Context, userID string) (*model.SubscriptionState, error) {
	var state model.SubscriptionState
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&state).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &state, nil
}
