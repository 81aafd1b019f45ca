package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"habitflow-payments/internal/client"
	"habitflow-payments/internal/model"

	"github.com/rs/zerolog/log"
)

// resolveOrCreateUser maps a payment email to an internal user id.
//
// Three tiers, in order: the profile projection, a fresh auth account, and a
// bounded scan of the auth service's user list. The last tier covers accounts
// created out-of-band whose profile row has not materialized yet, and webhook
// deliveries racing signup. An empty id with nil error means "unresolved";
// callers record the order with a null user for manual reconciliation.
func (s *reconcilerServiceImpl) resolveOrCreateUser(ctx context.Context, email, fullName string) (string, error) {
	profile, err := s.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("profile lookup: %w", err)
	}
	if profile != nil {
		return profile.ID, nil
	}

	user, err := s.authClient.CreateUser(ctx, email, fullName)
	if err == nil {
		s.projectProfile(ctx, user.ID, email, fullName)
		log.Info().
			Str("user_id", user.ID).
			Str("email", email).
			Msg("created auth account for payment email")
		return user.ID, nil
	}

	if !errors.Is(err, client.ErrEmailExists) {
		return "", fmt.Errorf("auth create user: %w", err)
	}

	// The account exists at the auth layer without a profile row. Scan the
	// user list, bounded so a huge account base cannot pin the handler.
	for page := 1; page <= s.authMaxPages; page++ {
		users, listErr := s.authClient.ListUsers(ctx, page, s.authPageSize)
		if listErr != nil {
			return "", fmt.Errorf("auth list users page %d: %w", page, listErr)
		}

		for _, user := range users {
			if strings.EqualFold(user.Email, email) {
				s.projectProfile(ctx, user.ID, email, fullName)
				return user.ID, nil
			}
		}

		// A short page means end of list.
		if len(users) < s.authPageSize {
			break
		}
	}

	log.Warn().
		Str("email", email).
		Int("max_pages", s.authMaxPages).
		Msg("auth account exists but was not found in bounded user scan")
	return "", nil
}

// projectProfile backfills the profile row so the next event resolves the
// email in one read. Best effort; the auth account is the source of truth.
func (s *reconcilerServiceImpl) projectProfile(ctx context.Context, userID, email, fullName string) {
	err := s.profileRepo.Create(ctx, &model.Profile{
		ID:       userID,
		Email:    email,
		FullName: fullName,
	})
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("email", email).
			Msg("create profile projection")
	}
}
