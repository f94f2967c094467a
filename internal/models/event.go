package models

import "time"

type Event struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Title                string     `gorm:"type:varchar(200);not null" json:"title"`
	Description          string     `json:"description"`
	Location             string     `gorm:"type:varchar(200)" json:"location"`
	StartAt              time.Time  `gorm:"not null" json:"start_at"`
	EndAt                time.Time  `gorm:"not null" json:"end_at"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	MinCapacity          int        `gorm:"not null" json:"min_capacity"`
	MaxCapacity          int        `gorm:"not null" json:"max_capacity"`
	WaitlistEnabled      bool       `gorm:"not null" json:"waitlist_enabled"`
	WaitlistCapacity     *int       `json:"waitlist_capacity,omitempty"`
	AutoApprove          bool       `gorm:"not null" json:"auto_approve"`
	IsVisible            bool       `gorm:"not null" json:"is_visible"`
	IsActive             bool       `gorm:"not null;index" json:"is_active"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// DeadlinePassed reports whether registration closed before now.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline)
}

func (e *Event) Ended(now time.Time) bool {
	return now.After(e.EndAt)
}

func (e *Event) Started(now time.Time) bool {
	return now.After(e.StartAt)
}

// WaitlistHasRoom reports whether one more registrant fits on the waitlist.
// A nil WaitlistCapacity means the waitlist is unbounded.
func (e *Event) WaitlistHasRoom(waitlisted int64) bool {
	if !e.WaitlistEnabled {
		return false
	}
	if e.WaitlistCapacity == nil {
		return true
	}
	return waitlisted < int64(*e.WaitlistCapacity)
}
