package domain

import "fmt"

// NotificationType tags a push message.
type NotificationType string

const (
	NotificationClassificationUpdated NotificationType = "CLASSIFICATION_UPDATED"
	NotificationSessionExpired        NotificationType = "SESSION_EXPIRED"
)

const SessionExpiredText = "Your session has expired. Please log in again."

// Notification is a transient push message. It is never persisted.
type Notification struct {
	Type NotificationType `json:"type"`
	Data any              `json:"data"`
}

// FeedbackTopic is the broadcast destination for classification updates of one event.
func FeedbackTopic(eventID string) string {
	return fmt.Sprintf("feedback-updates/%s", eventID)
}

// PrincipalQueue is the direct-delivery destination for one principal.
func PrincipalQueue(principalID string) string {
	return fmt.Sprintf("queue/session/%s", principalID)
}
