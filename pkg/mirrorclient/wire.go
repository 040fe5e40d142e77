package mirrorclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"oxbow-be/pkg/tracker"
)

type envelope struct {
	Success   bool            `json:"success"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

type countData struct {
	Count     int `json:"count"`
	Threshold int `json:"threshold"`
}

type mirrorData struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	HasBeenViewed bool            `json:"has_been_viewed"`
	CreatedAt     time.Time       `json:"created_at"`
	Content       json.RawMessage `json:"content"`
}

func (m *mirrorData) toResult() *tracker.Result {
	return &tracker.Result{
		ID:            m.ID,
		Title:         m.Title,
		HasBeenViewed: m.HasBeenViewed,
		CreatedAt:     m.CreatedAt,
		Content:       m.Content,
	}
}

type statusData struct {
	Status       string      `json:"status"`
	RequestedAt  *time.Time  `json:"requested_at"`
	Mirror       *mirrorData `json:"mirror"`
	ErrorCode    string      `json:"error_code"`
	ErrorMessage string      `json:"error_message"`
}

type eligibilityData struct {
	CanGenerate bool       `json:"can_generate"`
	Reason      string     `json:"reason"`
	Message     string     `json:"message"`
	RetryAt     *time.Time `json:"retry_at"`
}

type generateData struct {
	RequestID string      `json:"request_id"`
	Status    string      `json:"status"`
	Mirror    *mirrorData `json:"mirror"`
}

// errorFromResponse maps the server's error_code, then the HTTP status, to
// a typed tracker error.
func errorFromResponse(status int, env envelope, decoded bool) *tracker.Error {
	message := ""
	if decoded {
		message = env.Message
	}
	cause := fmt.Errorf("http %d: %s", status, message)
	if !decoded {
		cause = fmt.Errorf("http %d", status)
	}

	switch env.ErrorCode {
	case "insufficient_entries":
		return tracker.NewError(tracker.KindEligibility, message, cause)
	case "rate_limited":
		return tracker.NewError(tracker.KindRateLimited, message, cause)
	case "already_generating":
		return tracker.NewError(tracker.KindAlreadyRunning, "", cause)
	case "content_policy":
		return tracker.NewError(tracker.KindContentPolicy, "", cause)
	case "parse_error":
		return tracker.NewError(tracker.KindParse, "", cause)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return tracker.NewError(tracker.KindRateLimited, message, cause)
	case status == http.StatusConflict:
		return tracker.NewError(tracker.KindAlreadyRunning, "", cause)
	case status == http.StatusUnprocessableEntity:
		return tracker.NewError(tracker.KindEligibility, message, cause)
	case status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout,
		status == http.StatusRequestTimeout:
		return tracker.NewError(tracker.KindNetwork, "", cause)
	case status >= 500:
		return tracker.NewError(tracker.KindFailed, "", cause)
	}

	if message == "" {
		message = http.StatusText(status)
	}
	return tracker.NewError(tracker.KindUnknown, message, cause)
}
