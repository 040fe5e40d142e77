package main

import (
	"oxbow-be/internal/model"
	"oxbow-be/pkg/events"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedNotificationTypes upserts the registry rows the notifier looks up by
// event code. Templates use {key} placeholders filled from the event payload.
func SeedNotificationTypes(db *gorm.DB) error {
	types := []model.NotificationType{
		{
			Code:        events.MirrorCompleted,
			DisplayName: "Your Mirror is ready",
			Template:    "\"{title}\" is ready to read. It reflects on {entry_count} entries.",
			SendEmail:   true,
			IsActive:    true,
		},
		{
			Code:        events.MirrorFailed,
			DisplayName: "Mirror could not be created",
			Template:    "{message}",
			IsActive:    true,
		},
		{
			Code:        events.MirrorShared,
			DisplayName: "A friend shared a Mirror",
			Template:    "A friend shared \"{title}\" with you.",
			IsActive:    true,
		},
		{
			Code:        events.FriendRequested,
			DisplayName: "New friend request",
			Template:    "Someone wants to connect with you.",
			IsActive:    true,
		},
		{
			Code:        events.FriendAccepted,
			DisplayName: "Friend request accepted",
			Template:    "Your friend request was accepted.",
			IsActive:    true,
		},
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "template", "send_email", "is_active"}),
	}).Create(&types).Error
}
