package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// RegistrationResult is the outcome of a successful Register call.
// WaitlistPosition is 1-based and zero for confirmed registrations.
type RegistrationResult struct {
	Registration     *models.Registration
	Event            *models.Event
	WaitlistPosition int
}

type WaitlistEntry struct {
	Position     int
	Registration models.Registration
}

type Waitlist struct {
	Event   *models.Event
	Entries []WaitlistEntry
}

type RegistrationCheck struct {
	Registered       bool
	Registration     *models.Registration
	WaitlistPosition int
}

type RegistrationService interface {
	Register(ctx context.Context, eventID, userID uint) (*RegistrationResult, error)
	Unregister(ctx context.Context, eventID, userID uint) (*models.Registration, error)
	CancelRegistration(ctx context.Context, registrationID uint) (*models.Registration, error)
	GetWaitlistPosition(ctx context.Context, eventID uint) (*Waitlist, error)
	ListMyRegistrations(ctx context.Context, userID uint) ([]models.Registration, error)
	ListEventRegistrations(ctx context.Context, eventID uint) ([]models.Registration, error)
	CheckRegistration(ctx context.Context, eventID, userID uint) (*RegistrationCheck, error)
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for deadline and start checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type registrationService struct {
	txr       repository.Transactor
	eventRepo repository.EventRepository
	regRepo   repository.RegistrationRepository
	notifier  Notifier
	waitlist  waitlist
	now       func() time.Time
}

func NewRegistrationService(
	txr repository.Transactor,
	eventRepo repository.EventRepository,
	regRepo repository.RegistrationRepository,
	notifier Notifier,
	opts ...Option,
) RegistrationService {
	o := buildOptions(opts)
	return &registrationService{
		txr:       txr,
		eventRepo: eventRepo,
		regRepo:   regRepo,
		notifier:  notifier,
		waitlist:  waitlist{regRepo: regRepo},
		now:       o.now,
	}
}

// lockActiveEvent locks the event row for the rest of tx. Inactive events are
// reported as missing.
func lockActiveEvent(ctx context.Context, repo repository.EventRepository, tx *gorm.DB, id uint) (*models.Event, error) {
	event, err := repo.FindByIDForUpdate(ctx, tx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock event %d: %w", id, err)
	}
	if !event.IsActive {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *registrationService) Register(ctx context.Context, eventID, userID uint) (*RegistrationResult, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.Register", trace.WithAttributes(
		attribute.Int64("event.id", int64(eventID)),
		attribute.Int64("user.id", int64(userID)),
	))
	var result *RegistrationResult
	var err error
	defer func() { endSpan(span, err) }()

	err = s.txr.WithTransaction(ctx, func(tx *gorm.DB) error {
		// 1. Lock the event row; concurrent decisions for this event queue here
		event, err := lockActiveEvent(ctx, s.eventRepo, tx, eventID)
		if err != nil {
			return err
		}
		if !event.IsVisible {
			return ErrEventNotVisible
		}

		// 2. Check the registration window
		now := s.now()
		if event.DeadlinePassed(now) {
			return ErrDeadlinePassed
		}
		if event.Ended(now) {
			return ErrEventEnded
		}

		// 3. Check double registration
		_, err = s.regRepo.FindActiveByUserAndEvent(ctx, tx, userID, eventID)
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find registration: %w", err)
		}

		// 4. Decide between a seat and the waitlist
		status := models.StatusConfirmed
		position := 0
		confirmed, err := s.regRepo.CountByStatus(ctx, tx, eventID, models.StatusConfirmed)
		if err != nil {
			return fmt.Errorf("count confirmed: %w", err)
		}
		if confirmed >= int64(event.MaxCapacity) {
			if !event.WaitlistEnabled {
				return ErrEventFull
			}
			waitlisted, err := s.regRepo.CountByStatus(ctx, tx, eventID, models.StatusWaitlisted)
			if err != nil {
				return fmt.Errorf("count waitlisted: %w", err)
			}
			if !event.WaitlistHasRoom(waitlisted) {
				return ErrWaitlistFull
			}
			status = models.StatusWaitlisted
			position = int(waitlisted) + 1
		}

		// 5. Persist
		reg := &models.Registration{
			EventID:      eventID,
			UserID:       userID,
			Status:       status,
			RegisteredAt: now,
		}
		if err := s.regRepo.Create(ctx, tx, reg); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("create registration: %w", err)
		}

		result = &RegistrationResult{Registration: reg, Event: event, WaitlistPosition: position}
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := models.NoticeConfirmed
	if result.Registration.Status == models.StatusWaitlisted {
		kind = models.NoticeWaitlisted
	}
	dispatch(ctx, s.notifier, kind, models.Notice{
		Kind:       kind,
		EventID:    result.Event.ID,
		EventTitle: result.Event.Title,
		UserID:     userID,
		Status:     result.Registration.Status,
		OccurredAt: result.Registration.RegisteredAt,
	})

	return result, nil
}

func (s *registrationService) Unregister(ctx context.Context, eventID, userID uint) (*models.Registration, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.Unregister", trace.WithAttributes(
		attribute.Int64("event.id", int64(eventID)),
		attribute.Int64("user.id", int64(userID)),
	))
	var (
		result   *models.Registration
		event    *models.Event
		promoted []models.Registration
		now      = s.now()
		err      error
	)
	defer func() { endSpan(span, err) }()

	err = s.txr.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		event, err = lockActiveEvent(ctx, s.eventRepo, tx, eventID)
		if err != nil {
			return err
		}
		if event.Started(now) {
			return ErrEventAlreadyStarted
		}

		reg, err := s.regRepo.FindLatestByUserAndEvent(ctx, tx, userID, eventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotRegistered
		}
		if err != nil {
			return fmt.Errorf("find registration: %w", err)
		}
		if reg.Status == models.StatusCancelled {
			return ErrAlreadyCancelled
		}

		promoted, err = s.cancel(ctx, tx, event, reg, now)
		if err != nil {
			return err
		}
		result = reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyCancellation(ctx, event, result, promoted, now)
	return result, nil
}

func (s *registrationService) CancelRegistration(ctx context.Context, registrationID uint) (*models.Registration, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.CancelRegistration", trace.WithAttributes(
		attribute.Int64("registration.id", int64(registrationID)),
	))
	var (
		result   *models.Registration
		event    *models.Event
		promoted []models.Registration
		now      = s.now()
		err      error
	)
	defer func() { endSpan(span, err) }()

	err = s.txr.WithTransaction(ctx, func(tx *gorm.DB) error {
		reg, err := s.regRepo.FindByID(ctx, tx, registrationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistrationNotFound
		}
		if err != nil {
			return fmt.Errorf("find registration: %w", err)
		}

		// Administrators may cancel on hidden or deleted events, so the
		// active flag is not checked here.
		event, err = s.eventRepo.FindByIDForUpdate(ctx, tx, reg.EventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("lock event %d: %w", reg.EventID, err)
		}

		// Re-read under the lock; the first read only located the event.
		reg, err = s.regRepo.FindByID(ctx, tx, registrationID)
		if err != nil {
			return fmt.Errorf("reload registration: %w", err)
		}
		if reg.Status == models.StatusCancelled {
			return ErrAlreadyCancelled
		}

		promoted, err = s.cancel(ctx, tx, event, reg, now)
		if err != nil {
			return err
		}
		result = reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyCancellation(ctx, event, result, promoted, now)
	return result, nil
}

// cancel moves reg to cancelled and, when a confirmed seat was released on an
// auto-approve event, promotes the head of the waitlist into it.
func (s *registrationService) cancel(ctx context.Context, tx *gorm.DB, event *models.Event, reg *models.Registration, now time.Time) ([]models.Registration, error) {
	prior := reg.Status
	if err := s.waitlist.transition(ctx, tx, reg, models.StatusCancelled, now); err != nil {
		return nil, err
	}
	if prior != models.StatusConfirmed || !event.AutoApprove {
		return nil, nil
	}
	return s.waitlist.promote(ctx, tx, event.ID, 1)
}

func (s *registrationService) notifyCancellation(ctx context.Context, event *models.Event, reg *models.Registration, promoted []models.Registration, now time.Time) {
	dispatch(ctx, s.notifier, models.NoticeCancelled, models.Notice{
		Kind:       models.NoticeCancelled,
		EventID:    event.ID,
		EventTitle: event.Title,
		UserID:     reg.UserID,
		Status:     models.StatusCancelled,
		OccurredAt: now,
	})
	dispatch(ctx, s.notifier, models.NoticePromoted, promotionNotices(event, promoted, now)...)
}

func (s *registrationService) GetWaitlistPosition(ctx context.Context, eventID uint) (*Waitlist, error) {
	event, err := s.findActiveEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	regs, err := s.regRepo.FindWaitlisted(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}

	entries := make([]WaitlistEntry, len(regs))
	for i, r := range regs {
		entries[i] = WaitlistEntry{Position: i + 1, Registration: r}
	}
	return &Waitlist{Event: event, Entries: entries}, nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, userID uint) ([]models.Registration, error) {
	return s.regRepo.FindByUserID(ctx, userID)
}

func (s *registrationService) ListEventRegistrations(ctx context.Context, eventID uint) ([]models.Registration, error) {
	if _, err := s.findActiveEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.regRepo.FindActiveByEventID(ctx, eventID)
}

func (s *registrationService) CheckRegistration(ctx context.Context, eventID, userID uint) (*RegistrationCheck, error) {
	reg, err := s.regRepo.FindActiveByUserAndEvent(ctx, nil, userID, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &RegistrationCheck{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}

	check := &RegistrationCheck{Registered: true, Registration: reg}
	if reg.Status == models.StatusWaitlisted {
		queue, err := s.regRepo.FindWaitlisted(ctx, nil, eventID)
		if err != nil {
			return nil, fmt.Errorf("list waitlist: %w", err)
		}
		for i, r := range queue {
			if r.ID == reg.ID {
				check.WaitlistPosition = i + 1
				break
			}
		}
	}
	return check, nil
}

func (s *registrationService) findActiveEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event %d: %w", id, err)
	}
	if !event.IsActive {
		return nil, ErrEventNotFound
	}
	return event, nil
}
