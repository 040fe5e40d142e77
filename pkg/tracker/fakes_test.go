package tracker

import (
	"context"
	"sync"
	"time"
)

type fakeLoop struct {
	interval  time.Duration
	fn        func()
	cancelled bool
}

type fakeTimer struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// fakeScheduler records loops and timers; tests fire them by hand.
type fakeScheduler struct {
	mu     sync.Mutex
	loops  []*fakeLoop
	timers []*fakeTimer
}

func (s *fakeScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &fakeLoop{interval: interval, fn: fn}
	s.loops = append(s.loops, l)
	return func() {
		s.mu.Lock()
		l.cancelled = true
		s.mu.Unlock()
	}
}

func (s *fakeScheduler) After(delay time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	tm := &fakeTimer{delay: delay, fn: fn}
	s.timers = append(s.timers, tm)
	return func() {
		s.mu.Lock()
		tm.cancelled = true
		s.mu.Unlock()
	}
}

func (s *fakeScheduler) activeLoops() []*fakeLoop {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []*fakeLoop
	for _, l := range s.loops {
		if !l.cancelled {
			active = append(active, l)
		}
	}
	return active
}

func (s *fakeScheduler) createdLoops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loops)
}

// tick fires every active loop once.
func (s *fakeScheduler) tick() {
	for _, l := range s.activeLoops() {
		l.fn()
	}
}

func (s *fakeScheduler) pendingTimers() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []*fakeTimer
	for _, tm := range s.timers {
		if !tm.cancelled && !tm.fired {
			pending = append(pending, tm)
		}
	}
	return pending
}

func (s *fakeScheduler) fireTimers() {
	for _, tm := range s.pendingTimers() {
		s.mu.Lock()
		tm.fired = true
		s.mu.Unlock()
		tm.fn()
	}
}

type fakeBackend struct {
	mu sync.Mutex

	count    int
	countErr error

	status    func() (*StatusReport, error)
	statusHit int

	eligibility *Eligibility
	eligErr     error
	// when set, CheckEligibility signals eligEntered and waits on eligGate
	eligEntered chan struct{}
	eligGate    chan struct{}

	outcome    *Outcome
	requestErr error
	requests   int

	viewed    []string
	viewedErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		status: func() (*StatusReport, error) {
			return &StatusReport{Status: StatusNone}, nil
		},
		eligibility: &Eligibility{CanGenerate: true},
	}
}

func (b *fakeBackend) setStatus(r *StatusReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = func() (*StatusReport, error) { return r, nil }
}

func (b *fakeBackend) setStatusFunc(fn func() (*StatusReport, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = fn
}

func (b *fakeBackend) setCount(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count = n
}

func (b *fakeBackend) UnassignedCount(ctx context.Context, userID string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count, b.countErr
}

func (b *fakeBackend) CheckStatus(ctx context.Context, userID string) (*StatusReport, error) {
	b.mu.Lock()
	b.statusHit++
	fn := b.status
	b.mu.Unlock()
	return fn()
}

func (b *fakeBackend) RequestGeneration(ctx context.Context, userID string) (*Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests++
	return b.outcome, b.requestErr
}

func (b *fakeBackend) MarkViewed(ctx context.Context, resultID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewed = append(b.viewed, resultID)
	return b.viewedErr
}

func (b *fakeBackend) CheckEligibility(ctx context.Context, userID string) (*Eligibility, error) {
	if b.eligGate != nil {
		b.eligEntered <- struct{}{}
		<-b.eligGate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eligibility, b.eligErr
}

func (b *fakeBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

func (b *fakeBackend) viewedIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.viewed...)
}

func processing() *StatusReport {
	return &StatusReport{Status: StatusProcessing, RequestedAt: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
}

func completed(id string, viewed bool) *StatusReport {
	return &StatusReport{
		Status: StatusCompleted,
		Result: &Result{ID: id, HasBeenViewed: viewed},
	}
}
