package repository

import (
	"context"
	"errors"

	"oxbow-be/internal/model"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when the notification does not exist
// or belongs to another user.
var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	// Notification Operations
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error

	// Registry Operations
	GetNotificationTypeByCode(ctx context.Context, code string) (*model.NotificationType, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) // email target
}
