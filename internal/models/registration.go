package models

import "time"

type RegistrationStatus string

const (
	StatusConfirmed  RegistrationStatus = "confirmed"
	StatusWaitlisted RegistrationStatus = "waitlisted"
	StatusCancelled  RegistrationStatus = "cancelled"
)

// transitions lists the legal moves between stored states. Creation into
// confirmed or waitlisted is not a transition and is not listed here.
var transitions = map[RegistrationStatus][]RegistrationStatus{
	StatusConfirmed:  {StatusCancelled},
	StatusWaitlisted: {StatusCancelled, StatusConfirmed},
}

func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusWaitlisted, StatusCancelled:
		return true
	}
	return false
}

func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Registration struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	EventID      uint               `gorm:"not null;index" json:"event_id"`
	UserID       uint               `gorm:"not null;index" json:"user_id"`
	Status       RegistrationStatus `gorm:"type:varchar(20);not null" json:"status"`
	RegisteredAt time.Time          `gorm:"not null" json:"registered_at"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}
