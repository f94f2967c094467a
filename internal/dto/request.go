package dto

import (
	"time"

	"github.com/Eursukkul/event-registration/internal/models"
)

type RegisterRequest struct {
	EventID uint `json:"event_id" validate:"required,gt=0"`
}

type EventRequest struct {
	Title                string     `json:"title" validate:"required,max=200"`
	Description          string     `json:"description"`
	Location             string     `json:"location" validate:"max=200"`
	StartAt              time.Time  `json:"start_at" validate:"required"`
	EndAt                time.Time  `json:"end_at" validate:"required,gtfield=StartAt"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	MinCapacity          int        `json:"min_capacity" validate:"required,gte=1,lte=10000"`
	MaxCapacity          int        `json:"max_capacity" validate:"required,gte=1,lte=10000,gtefield=MinCapacity"`
	WaitlistEnabled      bool       `json:"waitlist_enabled"`
	WaitlistCapacity     *int       `json:"waitlist_capacity,omitempty" validate:"omitempty,gte=0"`
	AutoApprove          bool       `json:"auto_approve"`
	IsVisible            bool       `json:"is_visible"`
}

func (r *EventRequest) ToModel() *models.Event {
	return &models.Event{
		Title:                r.Title,
		Description:          r.Description,
		Location:             r.Location,
		StartAt:              r.StartAt,
		EndAt:                r.EndAt,
		RegistrationDeadline: r.RegistrationDeadline,
		MinCapacity:          r.MinCapacity,
		MaxCapacity:          r.MaxCapacity,
		WaitlistEnabled:      r.WaitlistEnabled,
		WaitlistCapacity:     r.WaitlistCapacity,
		AutoApprove:          r.AutoApprove,
		IsVisible:            r.IsVisible,
	}
}

type VisibilityRequest struct {
	IsVisible *bool `json:"is_visible" validate:"required"`
}

type BulkDeleteRequest struct {
	EventIDs []uint `json:"event_ids" validate:"required,min=1,dive,gt=0"`
}
