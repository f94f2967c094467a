package service

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/repository"
	"gorm.io/gorm"
)

// --- In-memory store ---
//
// txMu plays the part of the event row lock: one transaction at a time.
// dataMu guards the maps for reads made outside a transaction.

type fakeStore struct {
	txMu   sync.Mutex
	dataMu sync.Mutex

	events map[uint]models.Event
	regs   map[uint]models.Registration
	nextID uint

	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: make(map[uint]models.Event),
		regs:   make(map[uint]models.Registration),
	}
}

func (s *fakeStore) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.dataMu.Lock()
	events, regs := maps.Clone(s.events), maps.Clone(s.regs)
	s.dataMu.Unlock()

	if err := fn(nil); err != nil {
		s.dataMu.Lock()
		s.events, s.regs = events, regs
		s.dataMu.Unlock()
		return err
	}
	return nil
}

func (s *fakeStore) addEvent(e models.Event) models.Event {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.events[e.ID] = e
	return e
}

func (s *fakeStore) registration(id uint) models.Registration {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return s.regs[id]
}

func (s *fakeStore) event(id uint) models.Event {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return s.events[id]
}

func (s *fakeStore) statusOf(eventID, userID uint) models.RegistrationStatus {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	var latest *models.Registration
	for _, r := range s.regs {
		if r.EventID == eventID && r.UserID == userID && (latest == nil || r.ID > latest.ID) {
			latest = &r
		}
	}
	if latest == nil {
		return ""
	}
	return latest.Status
}

func (s *fakeStore) counts(eventID uint) repository.StatusCounts {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return s.countsLocked(eventID)
}

func (s *fakeStore) countsLocked(eventID uint) repository.StatusCounts {
	var c repository.StatusCounts
	for _, r := range s.regs {
		if r.EventID != eventID {
			continue
		}
		switch r.Status {
		case models.StatusConfirmed:
			c.Confirmed++
		case models.StatusWaitlisted:
			c.Waitlisted++
		}
	}
	return c
}

// sorted returns the registrations matching keep in registered_at, id order.
func (s *fakeStore) sorted(keep func(models.Registration) bool) []models.Registration {
	out := make([]models.Registration, 0)
	for _, r := range s.regs {
		if keep(r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b models.Registration) int {
		if c := a.RegisteredAt.Compare(b.RegisteredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// --- EventRepository ---

type fakeEventRepo struct{ s *fakeStore }

func (r fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	*event = r.s.addEvent(*event)
	return nil
}

func (r fakeEventRepo) Save(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	if _, ok := r.s.events[event.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.events[event.ID] = *event
	return nil
}

func (r fakeEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r fakeEventRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	return r.FindByID(ctx, id)
}

func (r fakeEventRepo) FindActive(ctx context.Context, includeHidden bool) ([]models.Event, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	out := make([]models.Event, 0)
	for _, e := range r.s.events {
		if e.IsActive && (includeHidden || e.IsVisible) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b models.Event) int {
		if c := a.StartAt.Compare(b.StartAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// --- RegistrationRepository ---

type fakeRegRepo struct{ s *fakeStore }

// Create rejects a second active row for the pair, like the partial unique index.
func (r fakeRegRepo) Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	if r.s.createErr != nil {
		return r.s.createErr
	}
	for _, existing := range r.s.regs {
		if existing.EventID == reg.EventID && existing.UserID == reg.UserID && existing.Status != models.StatusCancelled {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.nextID++
	reg.ID = r.s.nextID
	reg.CreatedAt = reg.RegisteredAt
	reg.UpdatedAt = reg.RegisteredAt
	r.s.regs[reg.ID] = *reg
	return nil
}

func (r fakeRegRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	reg, ok := r.s.regs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &reg, nil
}

func (r fakeRegRepo) FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID uint) (*models.Registration, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for _, reg := range r.s.regs {
		if reg.UserID == userID && reg.EventID == eventID && reg.Status != models.StatusCancelled {
			return &reg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeRegRepo) FindLatestByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID uint) (*models.Registration, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	matches := r.s.sorted(func(reg models.Registration) bool {
		return reg.UserID == userID && reg.EventID == eventID
	})
	if len(matches) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	latest := matches[len(matches)-1]
	return &latest, nil
}

func (r fakeRegRepo) FindActiveByEventID(ctx context.Context, eventID uint) ([]models.Registration, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	return r.s.sorted(func(reg models.Registration) bool {
		return reg.EventID == eventID && reg.Status != models.StatusCancelled
	}), nil
}

func (r fakeRegRepo) FindByUserID(ctx context.Context, userID uint) ([]models.Registration, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	regs := r.s.sorted(func(reg models.Registration) bool { return reg.UserID == userID })
	slices.Reverse(regs)
	for i := range regs {
		e := r.s.events[regs[i].EventID]
		regs[i].Event = &e
	}
	return regs, nil
}

func (r fakeRegRepo) FindWaitlisted(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.Registration, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	return r.s.sorted(func(reg models.Registration) bool {
		return reg.EventID == eventID && reg.Status == models.StatusWaitlisted
	}), nil
}

func (r fakeRegRepo) FindFirstWaitlisted(ctx context.Context, tx *gorm.DB, eventID uint) (*models.Registration, error) {
	queue, _ := r.FindWaitlisted(ctx, tx, eventID)
	if len(queue) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &queue[0], nil
}

func (r fakeRegRepo) CountByStatus(ctx context.Context, tx *gorm.DB, eventID uint, status models.RegistrationStatus) (int64, error) {
	c := r.s.counts(eventID)
	switch status {
	case models.StatusConfirmed:
		return c.Confirmed, nil
	case models.StatusWaitlisted:
		return c.Waitlisted, nil
	}
	return 0, errors.New("unexpected status")
}

func (r fakeRegRepo) CountsByEvent(ctx context.Context, eventIDs []uint) (map[uint]repository.StatusCounts, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	out := make(map[uint]repository.StatusCounts, len(eventIDs))
	for _, id := range eventIDs {
		if c := r.s.countsLocked(id); c.Confirmed+c.Waitlisted > 0 {
			out[id] = c
		}
	}
	return out, nil
}

func (r fakeRegRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.RegistrationStatus, cancelledAt *time.Time) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	reg, ok := r.s.regs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	reg.Status = status
	reg.CancelledAt = cancelledAt
	r.s.regs[id] = reg
	return nil
}

// --- Notifier ---

type published struct {
	routingKey string
	notice     models.Notice
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (n *fakeNotifier) Publish(ctx context.Context, routingKey string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, published{routingKey: routingKey, notice: payload.(models.Notice)})
	return nil
}

func (n *fakeNotifier) keys() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, p := range n.sent {
		out[i] = p.routingKey
	}
	return out
}

func (n *fakeNotifier) noticesFor(routingKey string) []models.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Notice
	for _, p := range n.sent {
		if p.routingKey == routingKey {
			out = append(out, p.notice)
		}
	}
	return out
}

// --- Clock ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// --- Fixture ---

var baseTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store    *fakeStore
	clock    *fakeClock
	notifier *fakeNotifier
	regs     RegistrationService
	events   EventService
}

func newFixture() *fixture {
	store := newFakeStore()
	clock := &fakeClock{now: baseTime}
	notifier := &fakeNotifier{}
	eventRepo := fakeEventRepo{s: store}
	regRepo := fakeRegRepo{s: store}
	return &fixture{
		store:    store,
		clock:    clock,
		notifier: notifier,
		regs:     NewRegistrationService(store, eventRepo, regRepo, notifier, WithClock(clock.Now)),
		events:   NewEventService(store, eventRepo, regRepo, notifier, WithClock(clock.Now)),
	}
}

func intPtr(v int) *int { return &v }

// openEvent is an active, visible event starting in a week.
func openEvent(maxCapacity int) models.Event {
	deadline := baseTime.Add(6 * 24 * time.Hour)
	return models.Event{
		Title:                "Team offsite",
		Location:             "Hall A",
		StartAt:              baseTime.Add(7 * 24 * time.Hour),
		EndAt:                baseTime.Add(7*24*time.Hour + 3*time.Hour),
		RegistrationDeadline: &deadline,
		MinCapacity:          1,
		MaxCapacity:          maxCapacity,
		AutoApprove:          true,
		IsVisible:            true,
		IsActive:             true,
	}
}

func (f *fixture) addEvent(e models.Event) models.Event {
	return f.store.addEvent(e)
}
