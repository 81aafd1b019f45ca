package service

import (
	"context"
	"errors"
	"fmt"

	"habitflow-payments/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// reconcileEnrollment ensures the user holds exactly one enrollment for the
// product. An existing row, whatever its status, is left untouched; in
// particular the cohort of an earlier enrollment is never overwritten.
func (s *reconcilerServiceImpl) reconcileEnrollment(ctx context.Context, userID, productID, courseName string) error {
	existing, err := s.enrollmentRepo.Find(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("enrollment lookup: %w", err)
	}
	if existing != nil {
		log.Info().
			Str("user_id", userID).
			Str("product_id", productID).
			Str("status", existing.Status).
			Msg("enrollment already exists, skipping")
		return nil
	}

	var cohortID *string
	rule, err := s.ruleRepo.FindByProductID(ctx, productID)
	if err != nil {
		log.Error().Err(err).
			Str("product_id", productID).
			Msg("auto-enroll rule lookup, continuing without cohort")
	} else if rule != nil {
		cohortID = &rule.CohortID
	}

	enrollment := &model.Enrollment{
		UserID:     userID,
		ProductID:  productID,
		CourseName: courseName,
		CohortID:   cohortID,
		Status:     model.EnrollmentStatusActive,
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent delivery already enrolled the user.
			return nil
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	log.Info().
		Str("user_id", userID).
		Str("product_id", productID).
		Msg("enrollment created")
	return nil
}
