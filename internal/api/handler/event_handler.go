package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ovii2/EventSync/internal/core/ports"
)

// EventHandler serves the event catalogue.
type EventHandler struct {
	service ports.EventService
}

func NewEventHandler(service ports.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// Create handles POST /events (administrators only).
func (h *EventHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.service.Create(c.Request().Context(), principal, ports.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEventResponse(event))
}

// List handles GET /events?page=&limit=.
func (h *EventHandler) List(c echo.Context) error {
	var q listEventsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pagination parameters")
	}

	res, err := h.service.List(c.Request().Context(), q.Page, q.Limit)
	if err != nil {
		return err
	}

	items := make([]eventResponse, 0, len(res.Items))
	for _, e := range res.Items {
		items = append(items, toEventResponse(e))
	}
	return c.JSON(http.StatusOK, listEventsResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Get handles GET /events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(event))
}
