package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "typed passes through", err: NewError(KindParse, "", nil), want: KindParse},
		{name: "wrapped typed", err: fmt.Errorf("request: %w", NewError(KindRateLimited, "", nil)), want: KindRateLimited},
		{name: "deadline", err: context.DeadlineExceeded, want: KindNetwork},
		{name: "connection refused", err: fmt.Errorf("dial: %w", syscall.ECONNREFUSED), want: KindNetwork},
		{name: "url error", err: &url.Error{Op: "Get", URL: "http://oxbow", Err: errors.New("eof")}, want: KindNetwork},
		{name: "fetch failure message", err: errors.New("Network request failed"), want: KindNetwork},
		{name: "rate limit message", err: errors.New("rate limit exceeded"), want: KindRateLimited},
		{name: "content policy message", err: errors.New("blocked: content_policy"), want: KindContentPolicy},
		{name: "anything else", err: errors.New("boom"), want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.Equal(t, tt.want, got.Kind)
			assert.NotEmpty(t, got.Message)
		})
	}

	assert.Nil(t, ClassifyError(nil))
}

func TestErrorTransient(t *testing.T) {
	assert.True(t, NewError(KindNetwork, "", nil).Transient())
	assert.True(t, NewError(KindAlreadyRunning, "", nil).Transient())
	for _, k := range []ErrorKind{KindEligibility, KindRateLimited, KindContentPolicy, KindParse, KindTimeout, KindFailed, KindUnknown} {
		assert.False(t, NewError(k, "", nil).Transient(), k)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewError(KindNetwork, "", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "socket closed")
	assert.True(t, IsKind(fmt.Errorf("outer: %w", err), KindNetwork))
	assert.False(t, IsKind(cause, KindNetwork))
}

func TestFailureFromReport(t *testing.T) {
	assert.Equal(t, KindContentPolicy, failureFromReport(&StatusReport{ErrorCode: "content_policy"}).Kind)
	assert.Equal(t, KindParse, failureFromReport(&StatusReport{ErrorCode: "parse_error", ErrorMessage: "bad json"}).Kind)

	generic := failureFromReport(&StatusReport{ErrorCode: "llm_error", ErrorMessage: "upstream 500"})
	assert.Equal(t, KindFailed, generic.Kind)
	assert.Equal(t, msgFailed, generic.Message)
	assert.EqualError(t, generic.Err, "upstream 500")
}

func TestEligibilityError(t *testing.T) {
	err := eligibilityError(&Eligibility{Reason: ReasonInsufficientEntries})
	assert.Equal(t, KindEligibility, err.Kind)
	assert.Equal(t, msgEligibility, err.Message)

	err = eligibilityError(&Eligibility{Reason: ReasonRateLimited, Message: "wait 10 minutes"})
	assert.Equal(t, KindRateLimited, err.Kind)
	assert.Equal(t, "wait 10 minutes", err.Message)

	assert.True(t, eligibilityError(&Eligibility{Reason: ReasonAlreadyGenerating}).Transient())
}
