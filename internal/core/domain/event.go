package domain

import "time"

// Event is something organizers collect feedback on.
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	FeedbackCount int64     `json:"feedback_count"`
}
