package dto

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type FriendResponse struct {
	FriendshipId uuid.UUID `json:"friendship_id"`
	UserId       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Status       string    `json:"status"`
	Incoming     bool      `json:"incoming"`
	Since        time.Time `json:"since"`
}
