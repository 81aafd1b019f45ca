package service

import (
	"context"
	"strings"
	"time"

	"habitflow-payments/internal/client"
	"habitflow-payments/internal/model"

	"github.com/rs/zerolog/log"
)

// notifyMarketingList pushes the buyer onto the marketing list. Fire and
// forget: marketing sync is not part of the payment-integrity contract and
// must never fail the webhook.
//
// fullName and phone come from the checkout session; the profile row, when
// one resolved, supplies city and fills whichever of the two the session
// left blank.
func (s *reconcilerServiceImpl) notifyMarketingList(ctx context.Context, order *model.Order, fullName, phone string) {
	if order.Email == "" {
		return
	}

	city := ""
	if profile, err := s.profileRepo.FindByEmail(ctx, order.Email); err != nil {
		log.Error().Err(err).
			Str("email", order.Email).
			Msg("profile lookup for marketing sync")
	} else if profile != nil {
		city = profile.City
		if fullName == "" {
			fullName = profile.FullName
		}
		if phone == "" {
			phone = profile.Phone
		}
	}

	productName := "General Purchase"
	tags := []string{"paid_customer"}

	if order.ProductID != nil {
		product, err := s.productRepo.FindByID(ctx, *order.ProductID)
		if err != nil {
			log.Error().Err(err).
				Str("product_id", *order.ProductID).
				Msg("product lookup for marketing sync, using generic tags")
		} else if product != nil {
			productName = product.Name
			if product.MarketingTags != "" {
				tags = strings.Split(product.MarketingTags, ",")
			}
		}
	}

	contact := &client.MarketingContact{
		Email:       order.Email,
		FullName:    fullName,
		City:        city,
		Phone:       phone,
		Source:      "stripe_webhook",
		ProductName: productName,
		Amount:      order.Amount,
		Timestamp:   time.Now(),
		Status:      order.Status,
		Tags:        tags,
	}

	if err := s.marketingClient.SyncContact(ctx, contact); err != nil {
		log.Error().Err(err).
			Str("email", order.Email).
			Str("product_name", productName).
			Msg("marketing list sync")
	}
}
