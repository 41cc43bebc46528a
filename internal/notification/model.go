package notification

import "github.com/fkhayef/studyhub/internal/domain"

// Notification represents a message delivered to a single user
type Notification = domain.Notification

// NotificationType represents the type of notification
type NotificationType = domain.NotificationType
