package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UnassignedCountResponse struct {
	Count     int64 `json:"count"`
	Threshold int   `json:"threshold"`
}

type MirrorResponse struct {
	Id            uuid.UUID       `json:"id"`
	OwnerId       uuid.UUID       `json:"owner_id"`
	Title         string          `json:"title"`
	Content       json.RawMessage `json:"content"`
	EntryCount    int             `json:"entry_count"`
	HasBeenViewed bool            `json:"has_been_viewed"`
	ViewedAt      *time.Time      `json:"viewed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MirrorStatusResponse reports the user's latest generation request.
// Status is one of none, pending, processing, completed, failed.
type MirrorStatusResponse struct {
	Status       string          `json:"status"`
	RequestId    *uuid.UUID      `json:"request_id,omitempty"`
	RequestedAt  *time.Time      `json:"requested_at,omitempty"`
	Mirror       *MirrorResponse `json:"mirror,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

type EligibilityResponse struct {
	CanGenerate bool       `json:"can_generate"`
	Reason      string     `json:"reason,omitempty"`
	Message     string     `json:"message,omitempty"`
	RetryAt     *time.Time `json:"retry_at,omitempty"`
	Count       int64      `json:"count"`
	Threshold   int        `json:"threshold"`
}

type GenerateMirrorResponse struct {
	RequestId uuid.UUID       `json:"request_id"`
	Status    string          `json:"status"`
	Mirror    *MirrorResponse `json:"mirror,omitempty"`
}

type MirrorSummaryResponse struct {
	Id            uuid.UUID `json:"id"`
	OwnerId       uuid.UUID `json:"owner_id"`
	Title         string    `json:"title"`
	EntryCount    int       `json:"entry_count"`
	HasBeenViewed bool      `json:"has_been_viewed"`
	CreatedAt     time.Time `json:"created_at"`
}

type ShareMirrorRequest struct {
	MirrorId    uuid.UUID
	RecipientId uuid.UUID `json:"recipient_id" validate:"required"`
	Note        string    `json:"note" validate:"max=500"`
}

type ShareMirrorResponse struct {
	Id uuid.UUID `json:"id"`
}

type SharedMirrorResponse struct {
	ShareId  uuid.UUID             `json:"share_id"`
	Note     string                `json:"note,omitempty"`
	SharedAt time.Time             `json:"shared_at"`
	Mirror   MirrorSummaryResponse `json:"mirror"`
}

// GenerateMirrorMessage is the job payload handed to the generation worker.
type GenerateMirrorMessage struct {
	RequestId uuid.UUID `json:"request_id"`
	UserId    uuid.UUID `json:"user_id"`
}
