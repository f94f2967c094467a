package handler

import (
	"net/http"

	"github.com/Eursukkul/event-registration/internal/dto"
	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/Eursukkul/event-registration/internal/service"
	"github.com/labstack/echo/v4"
)

type RegistrationHandler struct {
	svc service.RegistrationService
}

func NewRegistrationHandler(svc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// RegisterRoutes mounts the employee registration endpoints on an
// authenticated group.
func (h *RegistrationHandler) RegisterRoutes(g *echo.Group) {
	regs := g.Group("/registrations")
	regs.POST("", h.Register)
	regs.GET("/me", h.ListMine)
	regs.DELETE("/events/:eventId", h.Unregister)
	regs.GET("/events/:eventId", h.ListForEvent)
	regs.GET("/check/:eventId", h.Check)
}

func (h *RegistrationHandler) Register(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.svc.Register(c.Request().Context(), req.EventID, userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToRegisterResponse(res))
}

func (h *RegistrationHandler) Unregister(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "eventId", "event")
	if err != nil {
		return err
	}

	if _, err := h.svc.Unregister(c.Request().Context(), eventID, userID); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully unregistered from the event"})
}

func (h *RegistrationHandler) ListMine(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	regs, err := h.svc.ListMyRegistrations(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, toRegistrationResponses(regs))
}

func (h *RegistrationHandler) ListForEvent(c echo.Context) error {
	eventID, err := parseID(c, "eventId", "event")
	if err != nil {
		return err
	}

	regs, err := h.svc.ListEventRegistrations(c.Request().Context(), eventID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, toRegistrationResponses(regs))
}

func (h *RegistrationHandler) Check(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "eventId", "event")
	if err != nil {
		return err
	}

	check, err := h.svc.CheckRegistration(c.Request().Context(), eventID, userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToRegistrationCheckResponse(check))
}

func toRegistrationResponses(regs []models.Registration) []dto.RegistrationResponse {
	resp := make([]dto.RegistrationResponse, len(regs))
	for i := range regs {
		resp[i] = dto.ToRegistrationResponse(&regs[i])
	}
	return resp
}
