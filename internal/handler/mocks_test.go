package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/Eursukkul/event-registration/internal/middleware"
	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/service"
	"github.com/labstack/echo/v4"
)

// --- Mock RegistrationService ---

type mockRegistrationService struct {
	registerFn   func(ctx context.Context, eventID, userID uint) (*service.RegistrationResult, error)
	unregisterFn func(ctx context.Context, eventID, userID uint) (*models.Registration, error)
	cancelFn     func(ctx context.Context, registrationID uint) (*models.Registration, error)
	waitlistFn   func(ctx context.Context, eventID uint) (*service.Waitlist, error)
	listMineFn   func(ctx context.Context, userID uint) ([]models.Registration, error)
	listEventFn  func(ctx context.Context, eventID uint) ([]models.Registration, error)
	checkFn      func(ctx context.Context, eventID, userID uint) (*service.RegistrationCheck, error)
}

func (m *mockRegistrationService) Register(ctx context.Context, eventID, userID uint) (*service.RegistrationResult, error) {
	return m.registerFn(ctx, eventID, userID)
}
func (m *mockRegistrationService) Unregister(ctx context.Context, eventID, userID uint) (*models.Registration, error) {
	return m.unregisterFn(ctx, eventID, userID)
}
func (m *mockRegistrationService) CancelRegistration(ctx context.Context, registrationID uint) (*models.Registration, error) {
	return m.cancelFn(ctx, registrationID)
}
func (m *mockRegistrationService) GetWaitlistPosition(ctx context.Context, eventID uint) (*service.Waitlist, error) {
	return m.waitlistFn(ctx, eventID)
}
func (m *mockRegistrationService) ListMyRegistrations(ctx context.Context, userID uint) ([]models.Registration, error) {
	return m.listMineFn(ctx, userID)
}
func (m *mockRegistrationService) ListEventRegistrations(ctx context.Context, eventID uint) ([]models.Registration, error) {
	return m.listEventFn(ctx, eventID)
}
func (m *mockRegistrationService) CheckRegistration(ctx context.Context, eventID, userID uint) (*service.RegistrationCheck, error) {
	return m.checkFn(ctx, eventID, userID)
}

// --- Mock EventService ---

type mockEventService struct {
	createFn     func(ctx context.Context, event *models.Event) error
	updateFn     func(ctx context.Context, id uint, changes *models.Event) (*models.Event, error)
	visibilityFn func(ctx context.Context, id uint, visible bool) (*models.Event, error)
	deleteFn     func(ctx context.Context, id uint) error
	deleteManyFn func(ctx context.Context, ids []uint) ([]uint, []uint, error)
	getVisibleFn func(ctx context.Context, id uint) (*service.EventSummary, error)
	getFn        func(ctx context.Context, id uint) (*service.EventSummary, error)
	listFn       func(ctx context.Context, includeHidden bool) ([]service.EventSummary, error)
	upcomingFn   func(ctx context.Context, order service.EventOrder, limit int) ([]service.EventSummary, error)
}

func (m *mockEventService) CreateEvent(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}
func (m *mockEventService) UpdateEvent(ctx context.Context, id uint, changes *models.Event) (*models.Event, error) {
	return m.updateFn(ctx, id, changes)
}
func (m *mockEventService) SetVisibility(ctx context.Context, id uint, visible bool) (*models.Event, error) {
	return m.visibilityFn(ctx, id, visible)
}
func (m *mockEventService) DeleteEvent(ctx context.Context, id uint) error {
	return m.deleteFn(ctx, id)
}
func (m *mockEventService) DeleteEvents(ctx context.Context, ids []uint) ([]uint, []uint, error) {
	return m.deleteManyFn(ctx, ids)
}
func (m *mockEventService) GetActiveVisibleEvent(ctx context.Context, id uint) (*service.EventSummary, error) {
	return m.getVisibleFn(ctx, id)
}
func (m *mockEventService) GetEvent(ctx context.Context, id uint) (*service.EventSummary, error) {
	return m.getFn(ctx, id)
}
func (m *mockEventService) ListEvents(ctx context.Context, includeHidden bool) ([]service.EventSummary, error) {
	return m.listFn(ctx, includeHidden)
}
func (m *mockEventService) ListUpcoming(ctx context.Context, order service.EventOrder, limit int) ([]service.EventSummary, error) {
	return m.upcomingFn(ctx, order, limit)
}

// --- Mock NotificationService ---

type mockNotificationService struct {
	listFn  func(ctx context.Context, userID uint) (*service.NotificationFeed, error)
	countFn func(ctx context.Context, userID uint) (int64, error)
	markFn  func(ctx context.Context, userID, id uint) error
	delFn   func(ctx context.Context, userID, id uint) error
}

func (m *mockNotificationService) ListMine(ctx context.Context, userID uint) (*service.NotificationFeed, error) {
	return m.listFn(ctx, userID)
}
func (m *mockNotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return m.countFn(ctx, userID)
}
func (m *mockNotificationService) MarkAsRead(ctx context.Context, userID, id uint) error {
	return m.markFn(ctx, userID, id)
}
func (m *mockNotificationService) Delete(ctx context.Context, userID, id uint) error {
	return m.delFn(ctx, userID, id)
}

// --- Helpers ---

// newContext builds a context for a JSON request made by userID. A zero
// userID leaves the caller unauthenticated.
func newContext(method, target string, body io.Reader, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = middleware.NewValidator()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set(middleware.ContextUserID, userID)
	}
	return c, rec
}
