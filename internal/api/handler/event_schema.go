package handler

import (
	"time"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

type createEventRequest struct {
	Title       string `json:"title"       validate:"required,notblank,min=4,max=100"`
	Description string `json:"description" validate:"omitempty,notblank,min=4,max=500"`
}

type listEventsQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

type eventResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	FeedbackCount int64     `json:"feedback_count"`
}

type listEventsResponse struct {
	Items      []eventResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
		FeedbackCount: e.FeedbackCount,
	}
}

type submitFeedbackRequest struct {
	Content string `json:"content" validate:"required,notblank,max=2000"`
}
