package handler

import (
	"fmt"
	"net/http"

	"github.com/Eursukkul/event-registration/internal/dto"
	"github.com/Eursukkul/event-registration/internal/middleware"
	"github.com/Eursukkul/event-registration/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	events service.EventService
	regs   service.RegistrationService
}

func NewAdminHandler(events service.EventService, regs service.RegistrationService) *AdminHandler {
	return &AdminHandler{events: events, regs: regs}
}

func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	admin := g.Group("/admin", middleware.RequireAdmin)

	admin.GET("/events", h.ListEvents)
	admin.POST("/events", h.CreateEvent)
	admin.POST("/events/bulk-delete", h.BulkDeleteEvents)
	admin.GET("/events/:id", h.GetEvent)
	admin.PUT("/events/:id", h.UpdateEvent)
	admin.DELETE("/events/:id", h.DeleteEvent)
	admin.PATCH("/events/:id/visibility", h.SetVisibility)
	admin.GET("/events/:id/waitlist", h.GetWaitlist)

	admin.DELETE("/registrations/:id", h.CancelRegistration)
}

func (h *AdminHandler) ListEvents(c echo.Context) error {
	events, err := h.events.ListEvents(c.Request().Context(), true)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func (h *AdminHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c, "id", "event")
	if err != nil {
		return err
	}

	summary, err := h.events.GetEvent(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(summary))
}

func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var req dto.EventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	event := req.ToModel()
	if err := h.events.CreateEvent(ctx, event); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(&service.EventSummary{Event: *event}))
}

func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	id, err := parseID(c, "id", "event")
	if err != nil {
		return err
	}

	var req dto.EventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.events.UpdateEvent(ctx, id, req.ToModel()); err != nil {
		return toHTTPError(err)
	}

	summary, err := h.events.GetEvent(ctx, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(summary))
}

func (h *AdminHandler) SetVisibility(c echo.Context) error {
	id, err := parseID(c, "id", "event")
	if err != nil {
		return err
	}

	var req dto.VisibilityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.events.SetVisibility(ctx, id, *req.IsVisible); err != nil {
		return toHTTPError(err)
	}

	summary, err := h.events.GetEvent(ctx, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(summary))
}

func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	id, err := parseID(c, "id", "event")
	if err != nil {
		return err
	}

	if err := h.events.DeleteEvent(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Event deleted successfully"})
}

func (h *AdminHandler) BulkDeleteEvents(c echo.Context) error {
	var req dto.BulkDeleteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	deleted, notFound, err := h.events.DeleteEvents(c.Request().Context(), req.EventIDs)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.BulkDeleteResponse{
		Message:     fmt.Sprintf("Successfully deleted %d event(s)", len(deleted)),
		DeletedIDs:  deleted,
		NotFoundIDs: notFound,
	})
}

func (h *AdminHandler) GetWaitlist(c echo.Context) error {
	id, err := parseID(c, "id", "event")
	if err != nil {
		return err
	}

	waitlist, err := h.regs.GetWaitlistPosition(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToWaitlistResponse(waitlist))
}

func (h *AdminHandler) CancelRegistration(c echo.Context) error {
	id, err := parseID(c, "id", "registration")
	if err != nil {
		return err
	}

	reg, err := h.regs.CancelRegistration(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}
