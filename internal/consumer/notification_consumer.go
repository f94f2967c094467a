package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationConsumer turns registration and event notices into stored
// notifications for the affected users.
type NotificationConsumer struct {
	notifications repository.NotificationRepository
	registrations repository.RegistrationRepository
}

func NewNotificationConsumer(notifications repository.NotificationRepository, registrations repository.RegistrationRepository) *NotificationConsumer {
	return &NotificationConsumer{notifications: notifications, registrations: registrations}
}

// Start processes deliveries until msgs is closed.
func (nc *NotificationConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			nc.handleMessage(ctx, msg)
		}
		slog.Info("notification consumer stopped: channel closed")
	}()
}

func (nc *NotificationConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var notice models.Notice
	if err := json.Unmarshal(msg.Body, &notice); err != nil {
		slog.Warn("notification consumer: bad payload", "routing_key", msg.RoutingKey, "error", err)
		_ = msg.Nack(false, false)
		return
	}
	if notice.Kind == "" {
		notice.Kind = msg.RoutingKey
	}

	recipients, err := nc.recipients(ctx, notice)
	if err != nil {
		slog.Error("notification consumer: resolve recipients", "event_id", notice.EventID, "error", err)
		_ = msg.Nack(false, true) // requeue
		return
	}

	batch := BuildNotifications(notice, recipients)
	if err := nc.notifications.CreateBatch(ctx, batch); err != nil {
		slog.Error("notification consumer: store", "event_id", notice.EventID, "error", err)
		_ = msg.Nack(false, true) // requeue
		return
	}

	slog.Debug("notification consumer: stored", "kind", notice.Kind, "event_id", notice.EventID, "count", len(batch))
	_ = msg.Ack(false)
}

// recipients resolves who hears about a notice: the registrant for
// registration notices, every live registrant for event edits.
func (nc *NotificationConsumer) recipients(ctx context.Context, notice models.Notice) ([]uint, error) {
	if notice.Kind != models.NoticeEventEdit {
		if notice.UserID == 0 {
			return nil, nil
		}
		return []uint{notice.UserID}, nil
	}

	regs, err := nc.registrations.FindActiveByEventID(ctx, notice.EventID)
	if err != nil {
		return nil, err
	}
	users := make([]uint, 0, len(regs))
	for _, r := range regs {
		users = append(users, r.UserID)
	}
	return users, nil
}

// BuildNotifications renders the user-facing wording for a notice. Unknown
// kinds produce no notifications.
func BuildNotifications(notice models.Notice, recipients []uint) []models.Notification {
	var (
		title, message string
		kind           models.NotificationType
	)
	switch notice.Kind {
	case models.NoticeConfirmed:
		kind = models.NotificationRegistration
		title = "Registration Confirmed"
		message = fmt.Sprintf("You have successfully registered for '%s'. Your spot is confirmed!", notice.EventTitle)
	case models.NoticeWaitlisted:
		kind = models.NotificationRegistration
		title = "Added to Waitlist"
		message = fmt.Sprintf("You have been added to the waitlist for '%s'. We'll notify you if a spot becomes available.", notice.EventTitle)
	case models.NoticePromoted:
		kind = models.NotificationPromotion
		title = "Spot Confirmed"
		message = fmt.Sprintf("A spot opened up for '%s'. Your registration is now confirmed!", notice.EventTitle)
	case models.NoticeCancelled:
		kind = models.NotificationUnregistration
		title = "Unregistration Confirmed"
		message = fmt.Sprintf("You have been unregistered from '%s'. We hope to see you at future events!", notice.EventTitle)
	case models.NoticeEventEdit:
		kind = models.NotificationEventUpdate
		title = "Event Update"
		message = fmt.Sprintf("Update for '%s': %s", notice.EventTitle, notice.Message)
	default:
		return nil
	}

	eventID := notice.EventID
	out := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		out = append(out, models.Notification{
			UserID:  userID,
			EventID: &eventID,
			Title:   title,
			Message: message,
			Type:    kind,
		})
	}
	return out
}
