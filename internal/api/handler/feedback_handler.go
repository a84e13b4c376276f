package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ovii2/EventSync/internal/core/ports"
)

// FeedbackHandler accepts feedback and serves per-event sentiment data.
type FeedbackHandler struct {
	service ports.FeedbackService
}

func NewFeedbackHandler(service ports.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Submit handles POST /events/:id/feedback. The item is returned while its
// sentiment is still PENDING; the result arrives later over the push channel.
func (h *FeedbackHandler) Submit(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req submitFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.service.Submit(c.Request().Context(), principal, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// List handles GET /events/:id/feedback.
func (h *FeedbackHandler) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Summary handles GET /events/:id/feedback/summary.
func (h *FeedbackHandler) Summary(c echo.Context) error {
	summary, err := h.service.Summarize(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
