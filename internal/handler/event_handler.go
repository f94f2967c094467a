package handler

import (
	"net/http"
	"strconv"

	"github.com/Eursukkul/event-registration/internal/dto"
	"github.com/Eursukkul/event-registration/internal/service"
	"github.com/labstack/echo/v4"
)

// EventHandler serves the public, read-only catalog.
type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/events", h.ListEvents)
	g.GET("/events/sorted-by-popularity", h.ListPopular)
	g.GET("/events/sorted-by-upcoming-date", h.ListUpcoming)
	g.GET("/events/:id", h.GetEvent)
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListEvents(c.Request().Context(), false)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func (h *EventHandler) ListPopular(c echo.Context) error {
	return h.listUpcoming(c, service.OrderByPopularity)
}

func (h *EventHandler) ListUpcoming(c echo.Context) error {
	return h.listUpcoming(c, service.OrderByStart)
}

// listUpcoming serves the upcoming listings; the optional ?n keeps the top n.
func (h *EventHandler) listUpcoming(c echo.Context, order service.EventOrder) error {
	limit := 0
	if raw := c.QueryParam("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "n must be a positive integer")
		}
		limit = n
	}

	events, err := h.svc.ListUpcoming(c.Request().Context(), order, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c, "id", "event")
	if err != nil {
		return err
	}

	summary, err := h.svc.GetActiveVisibleEvent(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(summary))
}

func toEventResponses(events []service.EventSummary) []dto.EventResponse {
	resp := make([]dto.EventResponse, len(events))
	for i := range events {
		resp[i] = dto.ToEventResponse(&events[i])
	}
	return resp
}
