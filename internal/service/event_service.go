package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// Availability labels shown in event listings.
const (
	AvailabilityOpen     = "Available"
	AvailabilityWaitlist = "Waitlist"
	AvailabilityFull     = "Full"
)

// EventOrder selects the ordering of an upcoming-events listing.
type EventOrder int

const (
	// OrderByStart lists the soonest events first.
	OrderByStart EventOrder = iota
	// OrderByPopularity lists events with the most confirmed seats first.
	OrderByPopularity
)

// EventSummary is an event snapshot together with its live registration counts.
type EventSummary struct {
	Event      models.Event
	Confirmed  int64
	Waitlisted int64
}

func (s EventSummary) AvailableSlots() int {
	if free := s.Event.MaxCapacity - int(s.Confirmed); free > 0 {
		return free
	}
	return 0
}

func (s EventSummary) Availability() string {
	if s.Confirmed < int64(s.Event.MaxCapacity) {
		return AvailabilityOpen
	}
	if s.Event.WaitlistHasRoom(s.Waitlisted) {
		return AvailabilityWaitlist
	}
	return AvailabilityFull
}

type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, id uint, changes *models.Event) (*models.Event, error)
	SetVisibility(ctx context.Context, id uint, visible bool) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
	DeleteEvents(ctx context.Context, ids []uint) (deleted, notFound []uint, err error)
	GetActiveVisibleEvent(ctx context.Context, id uint) (*EventSummary, error)
	GetEvent(ctx context.Context, id uint) (*EventSummary, error)
	ListEvents(ctx context.Context, includeHidden bool) ([]EventSummary, error)
	ListUpcoming(ctx context.Context, order EventOrder, limit int) ([]EventSummary, error)
}

type eventService struct {
	txr       repository.Transactor
	eventRepo repository.EventRepository
	regRepo   repository.RegistrationRepository
	notifier  Notifier
	waitlist  waitlist
	now       func() time.Time
}

func NewEventService(
	txr repository.Transactor,
	eventRepo repository.EventRepository,
	regRepo repository.RegistrationRepository,
	notifier Notifier,
	opts ...Option,
) EventService {
	o := buildOptions(opts)
	return &eventService{
		txr:       txr,
		eventRepo: eventRepo,
		regRepo:   regRepo,
		notifier:  notifier,
		waitlist:  waitlist{regRepo: regRepo},
		now:       o.now,
	}
}

func validateEvent(e *models.Event) error {
	if !e.StartAt.Before(e.EndAt) {
		return ErrInvalidSchedule
	}
	if e.RegistrationDeadline != nil && !e.RegistrationDeadline.Before(e.StartAt) {
		return ErrInvalidSchedule
	}
	if e.MinCapacity < 1 || e.MinCapacity > e.MaxCapacity {
		return ErrInvalidCapacity
	}
	if e.WaitlistCapacity != nil && *e.WaitlistCapacity < 0 {
		return ErrInvalidCapacity
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	event.IsActive = true
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// UpdateEvent replaces the editable fields of an event. The confirmed count is
// read under the event lock, so a capacity below it is refused before anything
// is written. Raising capacity on an auto-approve event promotes waitlisted
// registrants into the new seats.
func (s *eventService) UpdateEvent(ctx context.Context, id uint, changes *models.Event) (*models.Event, error) {
	ctx, span := tracer.Start(ctx, "EventService.UpdateEvent", trace.WithAttributes(
		attribute.Int64("event.id", int64(id)),
	))
	var (
		result   *models.Event
		promoted []models.Registration
		err      error
	)
	defer func() { endSpan(span, err) }()

	if err = validateEvent(changes); err != nil {
		return nil, err
	}

	err = s.txr.WithTransaction(ctx, func(tx *gorm.DB) error {
		event, err := lockActiveEvent(ctx, s.eventRepo, tx, id)
		if err != nil {
			return err
		}

		confirmed, err := s.regRepo.CountByStatus(ctx, tx, id, models.StatusConfirmed)
		if err != nil {
			return fmt.Errorf("count confirmed: %w", err)
		}
		if int64(changes.MaxCapacity) < confirmed {
			return fmt.Errorf("%w (%d)", ErrCapacityBelowConfirmed, confirmed)
		}

		event.Title = changes.Title
		event.Description = changes.Description
		event.Location = changes.Location
		event.StartAt = changes.StartAt
		event.EndAt = changes.EndAt
		event.RegistrationDeadline = changes.RegistrationDeadline
		event.MinCapacity = changes.MinCapacity
		event.MaxCapacity = changes.MaxCapacity
		event.WaitlistEnabled = changes.WaitlistEnabled
		event.WaitlistCapacity = changes.WaitlistCapacity
		event.AutoApprove = changes.AutoApprove
		event.IsVisible = changes.IsVisible
		if err := s.eventRepo.Save(ctx, tx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}

		if event.AutoApprove {
			promoted, err = s.waitlist.promote(ctx, tx, id, event.MaxCapacity-int(confirmed))
			if err != nil {
				return err
			}
		}
		result = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	dispatch(ctx, s.notifier, models.NoticeEventEdit, models.Notice{
		Kind:       models.NoticeEventEdit,
		EventID:    result.ID,
		EventTitle: result.Title,
		Message:    "event details have been updated",
		OccurredAt: now,
	})
	dispatch(ctx, s.notifier, models.NoticePromoted, promotionNotices(result, promoted, now)...)

	return result, nil
}

func (s *eventService) SetVisibility(ctx context.Context, id uint, visible bool) (*models.Event, error) {
	var result *models.Event
	err := s.txr.WithTransaction(ctx, func(tx *gorm.DB) error {
		event, err := lockActiveEvent(ctx, s.eventRepo, tx, id)
		if err != nil {
			return err
		}
		event.IsVisible = visible
		if err := s.eventRepo.Save(ctx, tx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		result = event
		return nil
	})
	return result, err
}

// DeleteEvent marks the event inactive. Registrations are kept.
func (s *eventService) DeleteEvent(ctx context.Context, id uint) error {
	return s.txr.WithTransaction(ctx, func(tx *gorm.DB) error {
		event, err := lockActiveEvent(ctx, s.eventRepo, tx, id)
		if err != nil {
			return err
		}
		event.IsActive = false
		if err := s.eventRepo.Save(ctx, tx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		return nil
	})
}

func (s *eventService) DeleteEvents(ctx context.Context, ids []uint) (deleted, notFound []uint, err error) {
	deleted = make([]uint, 0, len(ids))
	notFound = make([]uint, 0)
	for _, id := range ids {
		err := s.DeleteEvent(ctx, id)
		switch {
		case err == nil:
			deleted = append(deleted, id)
		case errors.Is(err, ErrEventNotFound):
			notFound = append(notFound, id)
		default:
			return deleted, notFound, err
		}
	}
	return deleted, notFound, nil
}

// GetActiveVisibleEvent is the public catalog read. Hidden events are
// reported as missing.
func (s *eventService) GetActiveVisibleEvent(ctx context.Context, id uint) (*EventSummary, error) {
	summary, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !summary.Event.IsVisible {
		return nil, ErrEventNotFound
	}
	return summary, nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*EventSummary, error) {
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

	counts, err := s.regRepo.CountsByEvent(ctx, []uint{id})
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	c := counts[id]
	return &EventSummary{Event: *event, Confirmed: c.Confirmed, Waitlisted: c.Waitlisted}, nil
}

func (s *eventService) ListEvents(ctx context.Context, includeHidden bool) ([]EventSummary, error) {
	events, err := s.eventRepo.FindActive(ctx, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		return []EventSummary{}, nil
	}

	ids := make([]uint, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	counts, err := s.regRepo.CountsByEvent(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}

	summaries := make([]EventSummary, len(events))
	for i, e := range events {
		c := counts[e.ID]
		summaries[i] = EventSummary{Event: e, Confirmed: c.Confirmed, Waitlisted: c.Waitlisted}
	}
	return summaries, nil
}

// ListUpcoming returns visible events that have not ended yet. A limit of
// zero or less returns all of them.
func (s *eventService) ListUpcoming(ctx context.Context, order EventOrder, limit int) ([]EventSummary, error) {
	all, err := s.ListEvents(ctx, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	upcoming := slices.DeleteFunc(all, func(e EventSummary) bool { return e.Event.Ended(now) })

	byStart := func(a, b EventSummary) int {
		if c := a.Event.StartAt.Compare(b.Event.StartAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Event.ID, b.Event.ID)
	}
	switch order {
	case OrderByPopularity:
		slices.SortStableFunc(upcoming, func(a, b EventSummary) int {
			if c := cmp.Compare(b.Confirmed, a.Confirmed); c != 0 {
				return c
			}
			return byStart(a, b)
		})
	default:
		slices.SortStableFunc(upcoming, byStart)
	}

	if limit > 0 && limit < len(upcoming) {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}
