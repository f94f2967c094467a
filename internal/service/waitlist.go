package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/repository"
	"gorm.io/gorm"
)

// waitlist holds the state-machine steps shared by the registration engine
// and the catalog's capacity edits. Callers must hold the event row lock.
type waitlist struct {
	regRepo repository.RegistrationRepository
}

func (w waitlist) transition(ctx context.Context, tx *gorm.DB, reg *models.Registration, next models.RegistrationStatus, now time.Time) error {
	if !reg.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStateTransition, reg.Status, next)
	}

	var cancelledAt *time.Time
	if next == models.StatusCancelled {
		cancelledAt = &now
	}
	if err := w.regRepo.UpdateStatus(ctx, tx, reg.ID, next, cancelledAt); err != nil {
		return fmt.Errorf("update registration %d: %w", reg.ID, err)
	}

	reg.Status = next
	reg.CancelledAt = cancelledAt
	return nil
}

// promote moves up to slots registrations from the head of the waitlist to
// confirmed, oldest first. An empty waitlist is not an error.
func (w waitlist) promote(ctx context.Context, tx *gorm.DB, eventID uint, slots int) ([]models.Registration, error) {
	var promoted []models.Registration
	for i := 0; i < slots; i++ {
		next, err := w.regRepo.FindFirstWaitlisted(ctx, tx, eventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return promoted, fmt.Errorf("find first waitlisted: %w", err)
		}
		if err := w.transition(ctx, tx, next, models.StatusConfirmed, time.Time{}); err != nil {
			return promoted, err
		}
		promoted = append(promoted, *next)
	}
	return promoted, nil
}

func promotionNotices(event *models.Event, promoted []models.Registration, now time.Time) []models.Notice {
	notices := make([]models.Notice, 0, len(promoted))
	for _, reg := range promoted {
		notices = append(notices, models.Notice{
			Kind:       models.NoticePromoted,
			EventID:    event.ID,
			EventTitle: event.Title,
			UserID:     reg.UserID,
			Status:     models.StatusConfirmed,
			OccurredAt: now,
		})
	}
	return notices
}
