package domain

import "time"

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationJoinRequested    NotificationType = "JOIN_REQUESTED"
	NotificationRequestApproved  NotificationType = "REQUEST_APPROVED"
	NotificationRequestRejected  NotificationType = "REQUEST_REJECTED"
	NotificationSessionScheduled NotificationType = "SESSION_SCHEDULED"
	NotificationSessionCanceled  NotificationType = "SESSION_CANCELED"
)

// Entity kinds a notification can point at.
const (
	EntityGroup   = "GROUP"
	EntitySession = "SESSION"
)

// Notification represents a message delivered to a single user
type Notification struct {
	ID                string           `json:"id"`
	RecipientID       string           `json:"recipient_id"`
	Type              NotificationType `json:"type"`
	Message           string           `json:"message"`
	IsRead            bool             `json:"is_read"`
	RelatedEntityType string           `json:"related_entity_type"`
	RelatedEntityID   string           `json:"related_entity_id"`
	CreatedAt         time.Time        `json:"created_at"`
}
