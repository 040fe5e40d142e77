package dto

import "oxbow-be/internal/model"

type ListNotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	Total         int64                `json:"total"`
	Unread        int64                `json:"unread"`
}
