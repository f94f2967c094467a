package dto

import (
	"time"

	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/service"
)

type RegistrationResponse struct {
	ID               uint                      `json:"id"`
	EventID          uint                      `json:"event_id"`
	EventTitle       string                    `json:"event_title,omitempty"`
	UserID           uint                      `json:"user_id"`
	Status           models.RegistrationStatus `json:"status"`
	WaitlistPosition *int                      `json:"waitlist_position,omitempty"`
	RegisteredAt     time.Time                 `json:"registered_at"`
	CancelledAt      *time.Time                `json:"cancelled_at,omitempty"`
}

type RegisterResponse struct {
	Message      string               `json:"message"`
	Registration RegistrationResponse `json:"registration"`
}

type RegistrationCheckResponse struct {
	IsRegistered     bool                       `json:"is_registered"`
	Status           *models.RegistrationStatus `json:"status"`
	RegistrationID   *uint                      `json:"registration_id,omitempty"`
	RegisteredAt     *time.Time                 `json:"registered_at,omitempty"`
	WaitlistPosition *int                       `json:"waitlist_position,omitempty"`
}

type EventResponse struct {
	ID                   uint       `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Location             string     `json:"location"`
	StartAt              time.Time  `json:"start_at"`
	EndAt                time.Time  `json:"end_at"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	MinCapacity          int        `json:"min_capacity"`
	MaxCapacity          int        `json:"max_capacity"`
	WaitlistEnabled      bool       `json:"waitlist_enabled"`
	WaitlistCapacity     *int       `json:"waitlist_capacity,omitempty"`
	AutoApprove          bool       `json:"auto_approve"`
	IsVisible            bool       `json:"is_visible"`
	ConfirmedCount       int64      `json:"confirmed_count"`
	WaitlistedCount      int64      `json:"waitlisted_count"`
	AvailableSlots       int        `json:"available_slots"`
	Availability         string     `json:"availability"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type WaitlistEntryResponse struct {
	Position       int       `json:"position"`
	RegistrationID uint      `json:"registration_id"`
	UserID         uint      `json:"user_id"`
	RegisteredAt   time.Time `json:"registered_at"`
}

type WaitlistResponse struct {
	EventID          uint                    `json:"event_id"`
	EventTitle       string                  `json:"event_title"`
	TotalWaitlisted  int                     `json:"total_waitlisted"`
	WaitlistCapacity *int                    `json:"waitlist_capacity"`
	Waitlist         []WaitlistEntryResponse `json:"waitlist"`
}

type NotificationResponse struct {
	ID         uint                    `json:"id"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	Type       models.NotificationType `json:"type"`
	EventID    *uint                   `json:"event_id,omitempty"`
	EventTitle string                  `json:"event_title,omitempty"`
	IsSeen     bool                    `json:"is_seen"`
	CreatedAt  time.Time               `json:"created_at"`
}

type NotificationFeedResponse struct {
	New              []NotificationResponse `json:"new"`
	Earlier          []NotificationResponse `json:"earlier"`
	TotalUnseenCount int                    `json:"total_unseen_count"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type BulkDeleteResponse struct {
	Message     string `json:"message"`
	DeletedIDs  []uint `json:"deleted_ids"`
	NotFoundIDs []uint `json:"not_found_ids,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToRegistrationResponse(r *models.Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:           r.ID,
		EventID:      r.EventID,
		UserID:       r.UserID,
		Status:       r.Status,
		RegisteredAt: r.RegisteredAt,
		CancelledAt:  r.CancelledAt,
	}
	if r.Event != nil {
		resp.EventTitle = r.Event.Title
	}
	return resp
}

func ToRegisterResponse(res *service.RegistrationResult) RegisterResponse {
	reg := ToRegistrationResponse(res.Registration)
	reg.EventTitle = res.Event.Title

	msg := "Successfully registered for the event"
	if res.Registration.Status == models.StatusWaitlisted {
		msg = "Event is full. You have been added to the waitlist"
		pos := res.WaitlistPosition
		reg.WaitlistPosition = &pos
	}
	return RegisterResponse{Message: msg, Registration: reg}
}

func ToRegistrationCheckResponse(check *service.RegistrationCheck) RegistrationCheckResponse {
	if !check.Registered {
		return RegistrationCheckResponse{}
	}
	r := check.Registration
	resp := RegistrationCheckResponse{
		IsRegistered:   true,
		Status:         &r.Status,
		RegistrationID: &r.ID,
		RegisteredAt:   &r.RegisteredAt,
	}
	if check.WaitlistPosition > 0 {
		pos := check.WaitlistPosition
		resp.WaitlistPosition = &pos
	}
	return resp
}

func ToEventResponse(s *service.EventSummary) EventResponse {
	e := s.Event
	return EventResponse{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		Location:             e.Location,
		StartAt:              e.StartAt,
		EndAt:                e.EndAt,
		RegistrationDeadline: e.RegistrationDeadline,
		MinCapacity:          e.MinCapacity,
		MaxCapacity:          e.MaxCapacity,
		WaitlistEnabled:      e.WaitlistEnabled,
		WaitlistCapacity:     e.WaitlistCapacity,
		AutoApprove:          e.AutoApprove,
		IsVisible:            e.IsVisible,
		ConfirmedCount:       s.Confirmed,
		WaitlistedCount:      s.Waitlisted,
		AvailableSlots:       s.AvailableSlots(),
		Availability:         s.Availability(),
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func ToWaitlistResponse(w *service.Waitlist) WaitlistResponse {
	entries := make([]WaitlistEntryResponse, len(w.Entries))
	for i, e := range w.Entries {
		entries[i] = WaitlistEntryResponse{
			Position:       e.Position,
			RegistrationID: e.Registration.ID,
			UserID:         e.Registration.UserID,
			RegisteredAt:   e.Registration.RegisteredAt,
		}
	}
	return WaitlistResponse{
		EventID:          w.Event.ID,
		EventTitle:       w.Event.Title,
		TotalWaitlisted:  len(entries),
		WaitlistCapacity: w.Event.WaitlistCapacity,
		Waitlist:         entries,
	}
}

func ToNotificationResponse(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		EventID:   n.EventID,
		IsSeen:    n.IsSeen,
		CreatedAt: n.CreatedAt,
	}
	if n.Event != nil {
		resp.EventTitle = n.Event.Title
	}
	return resp
}

func ToNotificationFeedResponse(feed *service.NotificationFeed) NotificationFeedResponse {
	resp := NotificationFeedResponse{
		New:              make([]NotificationResponse, len(feed.New)),
		Earlier:          make([]NotificationResponse, len(feed.Earlier)),
		TotalUnseenCount: len(feed.New),
	}
	for i := range feed.New {
		resp.New[i] = ToNotificationResponse(&feed.New[i])
	}
	for i := range feed.Earlier {
		resp.Earlier[i] = ToNotificationResponse(&feed.Earlier[i])
	}
	return resp
}
