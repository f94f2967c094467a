package service

import (
	"context"
	"fmt"

	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/repository"
)

// NotificationFeed splits a user's notifications into unseen and seen ones.
type NotificationFeed struct {
	New     []models.Notification
	Earlier []models.Notification
}

type NotificationService interface {
	ListMine(ctx context.Context, userID uint) (*NotificationFeed, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkAsRead(ctx context.Context, userID, id uint) error
	Delete(ctx context.Context, userID, id uint) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// ListMine returns the feed as it was before the call and then marks the
// unseen part as seen.
func (s *notificationService) ListMine(ctx context.Context, userID uint) (*NotificationFeed, error) {
	all, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	feed := &NotificationFeed{
		New:     make([]models.Notification, 0),
		Earlier: make([]models.Notification, 0),
	}
	var unseen []uint
	for _, n := range all {
		if n.IsSeen {
			feed.Earlier = append(feed.Earlier, n)
			continue
		}
		feed.New = append(feed.New, n)
		unseen = append(unseen, n.ID)
	}

	if _, err := s.repo.MarkSeen(ctx, userID, unseen); err != nil {
		return nil, fmt.Errorf("mark notifications seen: %w", err)
	}
	return feed, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnseen(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uint) error {
	n, err := s.repo.MarkSeen(ctx, userID, []uint{id})
	if err != nil {
		return fmt.Errorf("mark notification seen: %w", err)
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// Delete removes one of the user's own notifications.
func (s *notificationService) Delete(ctx context.Context, userID, id uint) error {
	n, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
