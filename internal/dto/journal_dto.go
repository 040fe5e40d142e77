package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateJournalEntryRequest struct {
	Title   string `json:"title" validate:"max=255"`
	Content string `json:"content" validate:"required"`
	Source  string `json:"source" validate:"omitempty,oneof=text voice"`
	Mood    string `json:"mood" validate:"max=50"`
}

type CreateJournalEntryResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowJournalEntryResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Source    string     `json:"source"`
	Mood      string     `json:"mood,omitempty"`
	MirrorId  *uuid.UUID `json:"mirror_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type UpdateJournalEntryRequest struct {
	Id      uuid.UUID
	Title   string `json:"title" validate:"max=255"`
	Content string `json:"content" validate:"required"`
	Mood    string `json:"mood" validate:"max=50"`
}

type UpdateJournalEntryResponse struct {
	Id uuid.UUID `json:"id"`
}

type ListJournalEntriesRequest struct {
	Unassigned bool `query:"unassigned"`
	Limit      int  `query:"limit" validate:"omitempty,min=1,max=100"`
	Page       int  `query:"page" validate:"omitempty,min=1"`
}

type ListJournalEntriesResponse struct {
	Entries []*ShowJournalEntryResponse `json:"entries"`
	Total   int64                       `json:"total"`
	Page    int                         `json:"page"`
	Limit   int                         `json:"limit"`
}
