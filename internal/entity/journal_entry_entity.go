package entity

import (
	"time"

	"github.com/google/uuid"
)

type EntrySource string

const (
	EntrySourceText  EntrySource = "text"
	EntrySourceVoice EntrySource = "voice"
)

type JournalEntry struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Content   string
	Source    EntrySource
	Mood      string
	MirrorId  *uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// Assigned reports whether the entry was consumed by a mirror.
func (e *JournalEntry) Assigned() bool {
	return e.MirrorId != nil
}
