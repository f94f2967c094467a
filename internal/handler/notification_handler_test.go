package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Eursukkul/event-registration/internal/dto"
	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications_Handler(t *testing.T) {
	svc := &mockNotificationService{
		listFn: func(ctx context.Context, userID uint) (*service.NotificationFeed, error) {
			return &service.NotificationFeed{
				New:     []models.Notification{{ID: 2, UserID: userID, Title: "Spot Confirmed", Type: models.NotificationPromotion}},
				Earlier: []models.Notification{{ID: 1, UserID: userID, Title: "Added to Waitlist", IsSeen: true}},
			}, nil
		},
		countFn: func(ctx context.Context, userID uint) (int64, error) {
			return 4, nil
		},
		markFn: func(ctx context.Context, userID, id uint) error {
			if id == 99 {
				return service.ErrNotificationNotFound
			}
			return nil
		},
	}
	h := NewNotificationHandler(svc)

	c, rec := newContext(http.MethodGet, "/api/v1/notifications", nil, 11)
	require.NoError(t, h.List(c))
	var feed dto.NotificationFeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	assert.Equal(t, 1, feed.TotalUnseenCount)
	assert.Equal(t, "Spot Confirmed", feed.New[0].Title)
	assert.Len(t, feed.Earlier, 1)

	c, rec = newContext(http.MethodGet, "/api/v1/notifications/unread-count", nil, 11)
	require.NoError(t, h.UnreadCount(c))
	assert.JSONEq(t, `{"unread_count":4}`, rec.Body.String())

	c, _ = newContext(http.MethodPost, "/api/v1/notifications/99/read", nil, 11)
	c.SetParamNames("id")
	c.SetParamValues("99")
	he, ok := h.MarkAsRead(c).(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestDeleteNotification_Handler(t *testing.T) {
	svc := &mockNotificationService{
		delFn: func(ctx context.Context, userID, id uint) error {
			if userID != 11 || id != 5 {
				return service.ErrNotificationNotFound
			}
			return nil
		},
	}
	h := NewNotificationHandler(svc)

	c, rec := newContext(http.MethodDelete, "/api/v1/notifications/5", nil, 11)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Delete(c))
	assert.JSONEq(t, `{"message":"Notification deleted"}`, rec.Body.String())

	c, _ = newContext(http.MethodDelete, "/api/v1/notifications/5", nil, 12)
	c.SetParamNames("id")
	c.SetParamValues("5")
	he, ok := h.Delete(c).(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
