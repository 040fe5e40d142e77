package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// ErrorKind is the machine-checkable class of a tracker error.
type ErrorKind string

const (
	KindNetwork        ErrorKind = "network"
	KindAlreadyRunning ErrorKind = "already_running"
	KindEligibility    ErrorKind = "eligibility"
	KindRateLimited    ErrorKind = "rate_limited"
	KindContentPolicy  ErrorKind = "content_policy"
	KindParse          ErrorKind = "parse"
	KindTimeout        ErrorKind = "timeout"
	KindFailed         ErrorKind = "failed"
	KindUnknown        ErrorKind = "unknown"
)

const (
	msgNetwork       = "Unable to reach Oxbow right now. Check your connection and try again."
	msgEligibility   = "Keep writing. A mirror needs a few more journal entries first."
	msgRateLimited   = "You have requested a mirror recently. Please wait a little before asking for another."
	msgContentPolicy = "We could not create a mirror from these entries. Some of the content could not be reflected on under our content guidelines. Add a few more entries and try again, or reach out if you think this is a mistake."
	msgTimeout       = "Your mirror is taking longer than expected. It may still arrive, so check back in a few minutes."
	msgFailed        = "Something went wrong while creating your mirror. Please try again."
)

// Error carries the kind alongside the message shown to the user.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether the request may still complete server-side.
func (e *Error) Transient() bool {
	return e.Kind == KindNetwork || e.Kind == KindAlreadyRunning
}

// NewError builds an Error with the default display message of its kind
// when message is empty.
func NewError(kind ErrorKind, message string, cause error) *Error {
	if message == "" {
		message = defaultMessage(kind)
	}
	return &Error{Kind: kind, Message: message, Err: cause}
}

func defaultMessage(kind ErrorKind) string {
	switch kind {
	case KindNetwork, KindAlreadyRunning:
		return msgNetwork
	case KindEligibility:
		return msgEligibility
	case KindRateLimited:
		return msgRateLimited
	case KindContentPolicy:
		return msgContentPolicy
	case KindTimeout:
		return msgTimeout
	default:
		return msgFailed
	}
}

// IsKind reports whether err is a tracker Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == kind
}

// ClassifyError turns an arbitrary collaborator error into a tracker Error.
// Typed errors pass through; transport errors are network class; message
// matching is only a last resort for collaborators that return plain errors.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var te *Error
	if errors.As(err, &te) {
		return te
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return NewError(KindNetwork, "", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewError(KindNetwork, "", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NewError(KindNetwork, "", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "network request failed"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "timeout"):
		return NewError(KindNetwork, "", err)
	case strings.Contains(msg, "rate limit"):
		return NewError(KindRateLimited, "", err)
	case strings.Contains(msg, "content policy"), strings.Contains(msg, "content_policy"):
		return NewError(KindContentPolicy, "", err)
	}

	return NewError(KindUnknown, "", err)
}

// failureFromReport builds the error surfaced for a failed status report.
func failureFromReport(r *StatusReport) *Error {
	switch r.ErrorCode {
	case "content_policy":
		return NewError(KindContentPolicy, "", nil)
	case "parse_error":
		return NewError(KindParse, "", errors.New(r.ErrorMessage))
	}
	var cause error
	if r.ErrorMessage != "" {
		cause = errors.New(r.ErrorMessage)
	}
	return NewError(KindFailed, "", cause)
}

// eligibilityError builds the error surfaced for a denied eligibility check.
func eligibilityError(e *Eligibility) *Error {
	switch e.Reason {
	case ReasonRateLimited:
		return NewError(KindRateLimited, e.Message, nil)
	case ReasonAlreadyGenerating:
		return NewError(KindAlreadyRunning, e.Message, nil)
	default:
		return NewError(KindEligibility, e.Message, nil)
	}
}
