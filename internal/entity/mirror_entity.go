package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MirrorRequestStatus string

const (
	MirrorRequestPending    MirrorRequestStatus = "pending"
	MirrorRequestProcessing MirrorRequestStatus = "processing"
	MirrorRequestCompleted  MirrorRequestStatus = "completed"
	MirrorRequestFailed     MirrorRequestStatus = "failed"
)

// InFlight reports whether the worker still owns the request.
func (s MirrorRequestStatus) InFlight() bool {
	return s == MirrorRequestPending || s == MirrorRequestProcessing
}

// Failure codes stored on failed requests.
const (
	MirrorErrorContentPolicy = "content_policy"
	MirrorErrorParse         = "parse_error"
	MirrorErrorLLM           = "llm_error"
	MirrorErrorNoEntries     = "no_entries"
)

type MirrorRequest struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Status       MirrorRequestStatus
	ErrorCode    string
	ErrorMessage string
	MirrorId     *uuid.UUID
	RequestedAt  time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

type Mirror struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	RequestId     uuid.UUID
	Title         string
	Content       json.RawMessage
	EntryCount    int
	HasBeenViewed bool
	ViewedAt      *time.Time
	CreatedAt     time.Time
}
