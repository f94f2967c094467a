package models

import "time"

type NotificationType string

const (
	NotificationRegistration   NotificationType = "Registration"
	NotificationUnregistration NotificationType = "Unregistration"
	NotificationPromotion      NotificationType = "Promotion"
	NotificationEventUpdate    NotificationType = "EventUpdate"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	EventID   *uint            `json:"event_id,omitempty"`
	Title     string           `gorm:"type:varchar(200);not null" json:"title"`
	Message   string           `gorm:"not null" json:"message"`
	Type      NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	IsSeen    bool             `gorm:"not null" json:"is_seen"`
	CreatedAt time.Time        `json:"created_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// Notice is the message published to the broker when a registration changes
// state or an event is edited. Consumers turn notices into Notification rows.
type Notice struct {
	Kind       string             `json:"kind"`
	EventID    uint               `json:"event_id"`
	EventTitle string             `json:"event_title"`
	UserID     uint               `json:"user_id,omitempty"`
	Status     RegistrationStatus `json:"status,omitempty"`
	Message    string             `json:"message,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Routing keys on the registrations exchange.
const (
	NoticeConfirmed  = "registration.confirmed"
	NoticeWaitlisted = "registration.waitlisted"
	NoticePromoted   = "registration.promoted"
	NoticeCancelled  = "registration.cancelled"
	NoticeEventEdit  = "event.updated"
)
