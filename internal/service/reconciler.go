package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"habitflow-payments/internal/client"
	"habitflow-payments/internal/model"
	"habitflow-payments/internal/repository"

	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// ReconcilerService keeps the order ledger, profiles, enrollments and
// subscription state consistent with Stripe's view of a payment event.
//
// Only order-ledger failures propagate out of HandleEvent; every other branch
// logs and moves on so Stripe does not redeliver for side effects we can live
// without. The returned bool reports a replay of an already-recorded order so
// the handler can acknowledge duplicates explicitly.
type ReconcilerService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) (bool, error)
}

type reconcilerServiceImpl struct {
	profileRepo      repository.ProfileRepository
	orderRepo        repository.OrderRepository
	enrollmentRepo   repository.EnrollmentRepository
	ruleRepo         repository.AutoEnrollRuleRepository
	stateRepo        repository.SubscriptionStateRepository
	productRepo      repository.ProductRepository
	webhookEventRepo repository.WebhookEventRepository
	authClient       client.AuthClient
	stripeClient     client.StripeClient
	marketingClient  client.MarketingClient
	authPageSize     int
	authMaxPages     int
}

func NewReconcilerService(
	profileRepo repository.ProfileRepository,
	orderRepo repository.OrderRepository,
	enrollmentRepo repository.EnrollmentRepository,
	ruleRepo repository.AutoEnrollRuleRepository,
	stateRepo repository.SubscriptionStateRepository,
	productRepo repository.ProductRepository,
	webhookEventRepo repository.WebhookEventRepository,
	authClient client.AuthClient,
	stripeClient client.StripeClient,
	marketingClient client.MarketingClient,
	authPageSize int,
	authMaxPages int,
) ReconcilerService {
	return &reconcilerServiceImpl{
		profileRepo:      profileRepo,
		orderRepo:        orderRepo,
		enrollmentRepo:   enrollmentRepo,
		ruleRepo:         ruleRepo,
		stateRepo:        stateRepo,
		productRepo:      productRepo,
		webhookEventRepo: webhookEventRepo,
		authClient:       authClient,
		stripeClient:     stripeClient,
		marketingClient:  marketingClient,
		authPageSize:     authPageSize,
		authMaxPages:     authMaxPages,
	}
}

func (s *reconcilerServiceImpl) HandleEvent(ctx context.Context, event *stripe.Event) (bool, error) {
	var (
		duplicate bool
		err       error
	)

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session model.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return false, fmt.Errorf("decode checkout session: %w", err)
		}
		duplicate, err = s.handleCheckoutCompleted(ctx, &session)
	case stripe.EventTypeInvoicePaid:
		var invoice model.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return false, fmt.Errorf("decode invoice: %w", err)
		}
		duplicate, err = s.handleInvoicePaid(ctx, &invoice)
	case stripe.EventTypeCustomerSubscriptionCreated:
		var sub model.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return false, fmt.Errorf("decode subscription: %w", err)
		}
		err = s.handleSubscriptionCreated(ctx, &sub)
	case stripe.EventTypeCustomerSubscriptionUpdated:
		var sub model.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return false, fmt.Errorf("decode subscription: %w", err)
		}
		err = s.handleSubscriptionUpdated(ctx, &sub)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub model.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return false, fmt.Errorf("decode subscription: %w", err)
		}
		err = s.handleSubscriptionDeleted(ctx, &sub)
	case stripe.EventTypeChargeRefunded:
		var charge model.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return false, fmt.Errorf("decode charge: %w", err)
		}
		err = s.handleChargeRefunded(ctx, &charge)
	default:
		// New event types must never fail the webhook.
		log.Info().
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Msg("webhook event ignored (unhandled type)")
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if auditErr := s.webhookEventRepo.MarkProcessed(ctx, event.ID, string(event.Type)); auditErr != nil {
		log.Error().Err(auditErr).
			Str("event_id", event.ID).
			Msg("record processed webhook event")
	}

	return duplicate, nil
}

func (s *reconcilerServiceImpl) handleCheckoutCompleted(ctx context.Context, session *model.CheckoutSession) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(session.CustomerDetails.Email))
	if email == "" {
		email = strings.ToLower(strings.TrimSpace(session.CustomerEmail))
	}

	existing, err := s.orderRepo.FindByIdempotencyKey(ctx, session.ID)
	if err != nil {
		return false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing != nil {
		log.Info().
			Str("session_id", session.ID).
			Str("email", email).
			Msg("duplicate checkout event, order already recorded")
		return true, nil
	}

	var userID *string
	if email != "" {
		id, resolveErr := s.resolveOrCreateUser(ctx, email, session.CustomerDetails.Name)
		if resolveErr != nil {
			log.Error().Err(resolveErr).
				Str("email", email).
				Msg("resolve user for checkout, recording order without user")
		} else if id != "" {
			userID = &id
		}
	} else {
		log.Warn().Str("session_id", session.ID).Msg("checkout session carries no email")
	}

	var productID *string
	if pid := strings.TrimSpace(session.Metadata["product_id"]); pid != "" {
		productID = &pid
	}
	courseName := strings.TrimSpace(session.Metadata["course_name"])

	paymentType := model.PaymentTypeOneTime
	if session.Mode == "subscription" {
		paymentType = model.PaymentTypeSubscriptionInitial
	}

	productName := courseName
	if productID != nil {
		if product, lookupErr := s.productRepo.FindByID(ctx, *productID); lookupErr != nil {
			log.Error().Err(lookupErr).Str("product_id", *productID).Msg("product lookup for order")
		} else if product != nil {
			productName = product.Name
			if courseName == "" {
				courseName = product.CourseName
			}
		}
	}

	order := &model.Order{
		IdempotencyKey: session.ID,
		UserID:         userID,
		Email:          email,
		Amount:         session.AmountTotal,
		Currency:       session.Currency,
		ProductName:    productName,
		ProductID:      productID,
		PaymentType:    paymentType,
		Status:         model.OrderStatusCompleted,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race against a concurrent delivery of the same event;
			// the unique key is the idempotency signal.
			log.Info().Str("session_id", session.ID).Msg("duplicate checkout event, lost insert race")
			return true, nil
		}
		return false, fmt.Errorf("record order: %w", err)
	}

	log.Info().
		Str("session_id", session.ID).
		Str("email", email).
		Int64("amount", order.Amount).
		Str("payment_type", paymentType).
		Msg("order recorded")

	switch {
	case userID == nil:
		log.Warn().Str("session_id", session.ID).Msg("skipping enrollment, no resolved user")
	case productID == nil:
		log.Warn().Str("session_id", session.ID).Msg("skipping enrollment, no product identifier")
	default:
		if enrollErr := s.reconcileEnrollment(ctx, *userID, *productID, courseName); enrollErr != nil {
			log.Error().Err(enrollErr).
				Str("user_id", *userID).
				Str("product_id", *productID).
				Msg("reconcile enrollment")
		}
	}

	s.notifyMarketingList(ctx, order, session.CustomerDetails.Name, session.CustomerDetails.Phone)

	return false, nil
}

func (s *reconcilerServiceImpl) handleInvoicePaid(ctx context.Context, invoice *model.Invoice) (bool, error) {
	// The checkout session event already covers the first charge of a
	// subscription; recording its invoice too would double-count it.
	if invoice.BillingReason == "subscription_create" {
		log.Info().Str("invoice_id", invoice.ID).Msg("skipping initial subscription invoice")
		return false, nil
	}

	email := strings.ToLower(strings.TrimSpace(invoice.CustomerEmail))

	existing, err := s.orderRepo.FindByIdempotencyKey(ctx, invoice.ID)
	if err != nil {
		return false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing != nil {
		log.Info().Str("invoice_id", invoice.ID).Msg("duplicate invoice event, order already recorded")
		return true, nil
	}

	var userID *string
	if email != "" {
		id, resolveErr := s.resolveOrCreateUser(ctx, email, invoice.CustomerName)
		if resolveErr != nil {
			log.Error().Err(resolveErr).
				Str("email", email).
				Msg("resolve user for invoice, recording order without user")
		} else if id != "" {
			userID = &id
		}
	}

	var productID *string
	if pid := strings.TrimSpace(invoice.SubscriptionDetails.Metadata["product_id"]); pid != "" {
		productID = &pid
	}

	productName := ""
	if productID != nil {
		if product, lookupErr := s.productRepo.FindByID(ctx, *productID); lookupErr != nil {
			log.Error().Err(lookupErr).Str("product_id", *productID).Msg("product lookup for invoice order")
		} else if product != nil {
			productName = product.Name
		}
	}

	order := &model.Order{
		IdempotencyKey: invoice.ID,
		UserID:         userID,
		Email:          email,
		Amount:         invoice.AmountPaid,
		Currency:       invoice.Currency,
		ProductName:    productName,
		ProductID:      productID,
		PaymentType:    model.PaymentTypeSubscriptionRecurring,
		Status:         model.OrderStatusCompleted,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Info().Str("invoice_id", invoice.ID).Msg("duplicate invoice event, lost insert race")
			return true, nil
		}
		return false, fmt.Errorf("record order: %w", err)
	}

	log.Info().
		Str("invoice_id", invoice.ID).
		Str("email", email).
		Int64("amount", order.Amount).
		Msg("recurring order recorded")

	return false, nil
}
