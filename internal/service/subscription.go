package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"habitflow-payments/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// mapSubscriptionStatus folds Stripe's lifecycle stages into the internal set.
func mapSubscriptionStatus(stripeStatus string) string {
	switch stripeStatus {
	case "trialing":
		return model.SubscriptionStatusTrial
	case "canceled", "unpaid":
		return model.SubscriptionStatusCancelled
	case "past_due":
		return model.SubscriptionStatusExpired
	default:
		return model.SubscriptionStatusActive
	}
}

func (s *reconcilerServiceImpl) handleSubscriptionCreated(ctx context.Context, sub *model.Subscription) error {
	userID := s.resolveUserForCustomer(ctx, sub.Customer)
	if userID == "" {
		log.Warn().
			Str("subscription_id", sub.ID).
			Str("customer_id", sub.Customer).
			Msg("skipping subscription state, no resolved user")
		return nil
	}

	s.upsertSubscriptionState(ctx, userID, sub, mapSubscriptionStatus(sub.Status))

	// A cancel_after_months metadata entry asks Stripe to end the subscription
	// on its own after N calendar-ish months (N x 30 days). Best effort.
	if raw := strings.TrimSpace(sub.Metadata["cancel_after_months"]); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil || months <= 0 {
			log.Warn().
				Str("subscription_id", sub.ID).
				Str("cancel_after_months", raw).
				Msg("ignoring malformed cancel_after_months metadata")
			return nil
		}

		cancelAt := time.Now().Add(time.Duration(months) * 30 * 24 * time.Hour)
		if err := s.stripeClient.ScheduleCancelAt(ctx, sub.ID, cancelAt); err != nil {
			log.Error().Err(err).
				Str("subscription_id", sub.ID).
				Int("months", months).
				Msg("schedule auto-cancel")
		}
	}

	return nil
}

func (s *reconcilerServiceImpl) handleSubscriptionUpdated(ctx context.Context, sub *model.Subscription) error {
	userID := s.resolveUserForCustomer(ctx, sub.Customer)
	if userID == "" {
		log.Warn().
			Str("subscription_id", sub.ID).
			Str("customer_id", sub.Customer).
			Msg("skipping subscription state, no resolved user")
		return nil
	}

	s.upsertSubscriptionState(ctx, userID, sub, mapSubscriptionStatus(sub.Status))
	return nil
}

func (s *reconcilerServiceImpl) handleSubscriptionDeleted(ctx context.Context, sub *model.Subscription) error {
	userID := s.resolveUserForCustomer(ctx, sub.Customer)
	if userID == "" {
		log.Warn().
			Str("subscription_id", sub.ID).
			Str("customer_id", sub.Customer).
			Msg("skipping subscription deletion, no resolved user")
		return nil
	}

	s.upsertSubscriptionState(ctx, userID, sub, model.SubscriptionStatusExpired)

	// When the subscription metadata names a product the matching enrollment
	// is soft-cancelled, preserving history.
	if productID := strings.TrimSpace(sub.Metadata["product_id"]); productID != "" {
		if err := s.enrollmentRepo.Cancel(ctx, userID, productID); err != nil {
			log.Error().Err(err).
				Str("user_id", userID).
				Str("product_id", productID).
				Msg("cancel enrollment for deleted subscription")
		} else {
			log.Info().
				Str("user_id", userID).
				Str("product_id", productID).
				Msg("enrollment cancelled for deleted subscription")
		}
	}

	return nil
}

// upsertSubscriptionState overwrites the user's billing snapshot. Failures are
// logged only; the provider's redelivery is not a reliable repair path here
// and the event must still be acknowledged.
func (s *reconcilerServiceImpl) upsertSubscriptionState(ctx context.Context, userID string, sub *model.Subscription, status string) {
	state := &model.SubscriptionState{
		UserID:               userID,
		Status:               status,
		Platform:             "stripe",
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.Customer,
	}
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0)
		state.ExpiresAt = &t
	}
	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0)
		state.TrialEndsAt = &t
	}

	if err := s.stateRepo.Upsert(ctx, state); err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("subscription_id", sub.ID).
			Str("status", status).
			Msg("upsert subscription state")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("subscription_id", sub.ID).
		Str("status", status).
		Msg("subscription state updated")
}

// resolveUserForCustomer turns a Stripe customer id into an internal user id
// via the customer's email. Returns "" when the chain breaks anywhere.
func (s *reconcilerServiceImpl) resolveUserForCustomer(ctx context.Context, customerID string) string {
	if customerID == "" {
		return ""
	}

	cust, err := s.stripeClient.GetCustomer(ctx, customerID)
	if err != nil {
		log.Error().Err(err).Str("customer_id", customerID).Msg("stripe customer lookup")
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(cust.Email))
	if email == "" {
		log.Warn().Str("customer_id", customerID).Msg("stripe customer has no email")
		return ""
	}

	userID, err := s.resolveOrCreateUser(ctx, email, cust.Name)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("resolve user for customer")
		return ""
	}
	return userID
}

func (s *reconcilerServiceImpl) handleChargeRefunded(ctx context.Context, charge *model.Charge) error {
	if charge.PaymentIntent == "" {
		log.Warn().Str("charge_id", charge.ID).Msg("refunded charge has no payment intent")
		return nil
	}

	sessionID, err := s.stripeClient.FindSessionByPaymentIntent(ctx, charge.PaymentIntent)
	if err != nil {
		log.Error().Err(err).
			Str("charge_id", charge.ID).
			Str("payment_intent", charge.PaymentIntent).
			Msg("resolve checkout session for refund")
		return nil
	}
	if sessionID == "" {
		log.Info().
			Str("charge_id", charge.ID).
			Str("payment_intent", charge.PaymentIntent).
			Msg("no checkout session behind refunded charge, nothing to reconcile")
		return nil
	}

	order, err := s.orderRepo.MarkRefunded(ctx, sessionID, charge.AmountRefunded)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info().Str("session_id", sessionID).Msg("no order for refunded session")
			return nil
		}
		return fmt.Errorf("mark order refunded: %w", err)
	}

	log.Info().
		Str("session_id", sessionID).
		Int64("refund_amount", charge.AmountRefunded).
		Msg("order marked refunded")

	// Refunds revoke access outright: the enrollment row is removed, unlike
	// the subscription-deletion path which soft-cancels.
	if order.UserID != nil && order.ProductID != nil {
		if err := s.enrollmentRepo.Delete(ctx, *order.UserID, *order.ProductID); err != nil {
			log.Error().Err(err).
				Str("user_id", *order.UserID).
				Str("product_id", *order.ProductID).
				Msg("delete enrollment for refund")
		} else {
			log.Info().
				Str("user_id", *order.UserID).
				Str("product_id", *order.ProductID).
				Msg("enrollment removed for refund")
		}
	}

	return nil
}
