package tracker

import (
	"encoding/json"
	"time"
)

// State is the client-side view of mirror generation for one user.
type State int

const (
	StateIdle State = iota
	StateThresholdNotMet
	StateReadyToGenerate
	StateGenerating
	StateCompleted
	StateViewing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateThresholdNotMet:
		return "threshold_not_met"
	case StateReadyToGenerate:
		return "ready_to_generate"
	case StateGenerating:
		return "generating"
	case StateCompleted:
		return "completed"
	case StateViewing:
		return "viewing"
	default:
		return "unknown"
	}
}

// Status is the server-side generation status reported by the status query.
type Status string

const (
	StatusNone       Status = "none"
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// InFlight reports whether the server still owns an outstanding job.
func (s Status) InFlight() bool {
	return s == StatusPending || s == StatusProcessing
}

// Result is the generated mirror as seen by the tracker. Content is opaque.
type Result struct {
	ID            string          `json:"id"`
	Title         string          `json:"title,omitempty"`
	HasBeenViewed bool            `json:"has_been_viewed"`
	CreatedAt     time.Time       `json:"created_at"`
	Content       json.RawMessage `json:"content,omitempty"`
}

// StatusReport is the answer of the status query.
type StatusReport struct {
	Status       Status
	Result       *Result
	RequestedAt  time.Time
	ErrorCode    string
	ErrorMessage string
}

// Outcome is the answer of a generation request. A nil Result means the job
// was accepted and must be observed through the status query.
type Outcome struct {
	Result *Result
}

// Eligibility reason codes shared with the backend.
const (
	ReasonInsufficientEntries = "insufficient_entries"
	ReasonRateLimited         = "rate_limited"
	ReasonAlreadyGenerating   = "already_generating"
)

type Eligibility struct {
	CanGenerate bool
	Reason      string
	Message     string
	RetryAt     time.Time
}

// PollSession is the bookkeeping of one poll loop. IDs increase
// monotonically for the lifetime of a tracker.
type PollSession struct {
	ID          uint64
	Attempts    int
	MaxAttempts int
	Interval    time.Duration
	StartedAt   time.Time
}

// Snapshot is an immutable copy of the tracker state handed to observers.
type Snapshot struct {
	State      State
	Count      int
	CountKnown bool
	Result     *Result
	StartedAt  time.Time
	Poll       *PollSession
	LastError  *Error
	Version    uint64

	pollSeq uint64
}

// Polling reports whether a poll session is active.
func (s Snapshot) Polling() bool {
	return s.Poll != nil
}
