package domain

import (
	"strings"
	"time"
)

// Sentiment is the classification state of a feedback item.
type Sentiment string

const (
	SentimentPending  Sentiment = "PENDING"
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

// Sentiments lists every state in summary order.
var Sentiments = []Sentiment{SentimentPending, SentimentPositive, SentimentNeutral, SentimentNegative}

// Resolved reports whether s is a final label. Pending is the only unresolved state.
func (s Sentiment) Resolved() bool {
	return s == SentimentPositive || s == SentimentNeutral || s == SentimentNegative
}

// SentimentFromLabel maps a classifier label to a resolved sentiment.
// Anything other than positive or negative is neutral.
func SentimentFromLabel(label string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// FeedbackItem is one piece of submitted text for an event.
type FeedbackItem struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	PrincipalID string    `json:"principal_id"`
	Content     string    `json:"content"`
	Sentiment   Sentiment `json:"sentiment"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeedbackSummary holds per-state counts for one event.
type FeedbackSummary struct {
	EventID  string `json:"event_id"`
	Total    int64  `json:"total_feedback_count"`
	Pending  int64  `json:"pending_count"`
	Positive int64  `json:"positive_count"`
	Neutral  int64  `json:"neutral_count"`
	Negative int64  `json:"negative_count"`
}

// Add records n items in state s.
func (s *FeedbackSummary) Add(state Sentiment, n int64) {
	switch state {
	case SentimentPending:
		s.Pending += n
	case SentimentPositive:
		s.Positive += n
	case SentimentNeutral:
		s.Neutral += n
	case SentimentNegative:
		s.Negative += n
	default:
		return
	}
	s.Total += n
}
