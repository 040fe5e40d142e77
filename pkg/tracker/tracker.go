// Package tracker keeps a client's view of mirror generation in sync with the
// server. All state changes go through Machine.Transition; Tracker only
// performs I/O, runs timers and feeds the results back as events.
package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tracker is safe for concurrent use. Concurrent RequestGeneration calls
// submit at most once. Observers must not call Close.
type Tracker struct {
	backend   Backend
	userID    string
	machine   Machine
	cfg       Config
	logger    *zap.Logger
	scheduler Scheduler
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	snap        Snapshot
	closed      bool
	requesting  bool
	pollID      uint64
	pollCancel  func()
	retrySeq    uint64
	retryCancel func()
	observerSeq int
	observers   map[int]func(Snapshot)
}

func New(backend Backend, userID string, opts ...Option) *Tracker {
	o := &options{
		cfg:    DefaultConfig(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.scheduler == nil {
		o.scheduler = NewTimerScheduler()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		backend: backend,
		userID:  userID,
		machine: Machine{
			Threshold:    o.cfg.Threshold,
			MaxAttempts:  o.cfg.MaxAttempts,
			PollInterval: o.cfg.PollInterval,
		},
		cfg:       o.cfg,
		logger:    o.logger.With(zap.String("module", "tracker"), zap.String("user_id", userID)),
		scheduler: o.scheduler,
		now:       o.now,
		ctx:       ctx,
		cancel:    cancel,
		observers: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Subscribe registers fn to be called after every transition. The returned
// func removes the observer.
func (t *Tracker) Subscribe(fn func(Snapshot)) func() {
	t.mu.Lock()
	t.observerSeq++
	id := t.observerSeq
	t.observers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// Start performs the first count load and status check, leaving Idle. The
// status check runs even when the count cannot be loaded.
func (t *Tracker) Start(ctx context.Context) error {
	_, countErr := t.LoadBaselineCounts(ctx)
	return errors.Join(countErr, t.Foreground(ctx))
}

// LoadBaselineCounts refreshes the unassigned entry count. The count only
// decides the state while nothing is generating, completed or open.
func (t *Tracker) LoadBaselineCounts(ctx context.Context) (int, error) {
	count, err := t.backend.UnassignedCount(ctx, t.userID)
	if err != nil {
		te := ClassifyError(err)
		t.logger.Warn("failed to load unassigned count", zap.String("kind", string(te.Kind)), zap.Error(err))
		return 0, te
	}
	t.dispatch(CountsLoaded{Count: count})
	return count, nil
}

// RequestGeneration asks the server for a mirror. Terminal failures are
// returned as *Error and recorded in the snapshot; transient failures leave
// the tracker generating and polling and return nil. A call made while
// another is still talking to the server returns nil without submitting.
func (t *Tracker) RequestGeneration(ctx context.Context) error {
	t.mu.Lock()
	if t.requesting {
		t.mu.Unlock()
		return nil
	}
	t.requesting = true
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.requesting = false
		t.mu.Unlock()
	}()

	snap := t.Snapshot()
	switch snap.State {
	case StateViewing:
		return nil
	case StateGenerating:
		t.dispatch(GenerationAccepted{At: t.now()})
		return nil
	}

	report, err := t.backend.CheckStatus(ctx, t.userID)
	if err != nil {
		t.logger.Debug("status pre-check failed, continuing with eligibility", zap.Error(err))
	} else if report.Status.InFlight() {
		t.logger.Info("generation already running server-side, resuming poll")
		t.dispatch(StatusObserved{Report: report, Source: SourceRequest, At: t.now()})
		return nil
	}

	elig, err := t.backend.CheckEligibility(ctx, t.userID)
	if err != nil {
		te := ClassifyError(err)
		t.dispatch(EligibilityDenied{Err: te, At: t.now()})
		if te.Kind == KindAlreadyRunning {
			return nil
		}
		return te
	}
	if !elig.CanGenerate {
		te := eligibilityError(elig)
		t.logger.Info("generation not eligible", zap.String("reason", elig.Reason))
		t.dispatch(EligibilityDenied{Err: te, At: t.now()})
		if te.Transient() {
			return nil
		}
		return te
	}

	t.dispatch(GenerationStarted{At: t.now()})

	out, err := t.backend.RequestGeneration(ctx, t.userID)
	if err != nil {
		te := ClassifyError(err)
		if te.Transient() {
			t.logger.Warn("generation request failed transiently, keep polling", zap.String("kind", string(te.Kind)), zap.Error(err))
		} else {
			t.logger.Error("generation request failed", zap.String("kind", string(te.Kind)), zap.Error(err))
		}
		t.dispatch(GenerationFailed{Err: te, At: t.now()})
		if te.Transient() {
			return nil
		}
		return te
	}

	if out != nil && out.Result != nil {
		t.dispatch(GenerationSucceeded{Result: out.Result})
		return nil
	}
	t.dispatch(GenerationAccepted{At: t.now()})
	return nil
}

// Foreground reconciles with the server after the app becomes active.
// It never interrupts an open viewer. A transient failure is retried once.
func (t *Tracker) Foreground(ctx context.Context) error {
	return t.reconcile(ctx, true)
}

func (t *Tracker) reconcile(ctx context.Context, allowRetry bool) error {
	if t.Snapshot().State == StateViewing {
		return nil
	}

	report, err := t.backend.CheckStatus(ctx, t.userID)
	if err != nil {
		te := ClassifyError(err)
		if te.Transient() && allowRetry {
			t.logger.Info("foreground status check failed, retrying", zap.Duration("delay", t.cfg.ForegroundRetry), zap.Error(err))
			t.scheduleRetry()
			return nil
		}
		t.logger.Warn("foreground status check failed", zap.String("kind", string(te.Kind)), zap.Error(err))
		return te
	}

	t.dispatch(StatusObserved{Report: report, Source: SourceForeground, At: t.now()})
	return nil
}

func (t *Tracker) scheduleRetry() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.retryCancel != nil {
		t.retryCancel()
	}
	t.retrySeq++
	seq := t.retrySeq
	t.retryCancel = t.scheduler.After(t.cfg.ForegroundRetry, func() {
		t.mu.Lock()
		if t.retrySeq != seq || t.closed {
			t.mu.Unlock()
			return
		}
		t.retryCancel = nil
		t.mu.Unlock()
		_ = t.reconcile(t.ctx, false)
	})
}

// Background stops polling while the app is inactive. The state is kept so
// Foreground can resume it.
func (t *Tracker) Background() {
	t.mu.Lock()
	if t.retryCancel != nil {
		t.retryCancel()
		t.retryCancel = nil
		t.retrySeq++
	}
	t.mu.Unlock()
	t.dispatch(Backgrounded{})
}

// MarkViewed opens a completed result. It reports whether the viewer opened.
func (t *Tracker) MarkViewed() bool {
	snap := t.dispatch(ViewOpened{})
	return snap.State == StateViewing
}

// CloseViewer closes an open result and recomputes the resting state from a
// fresh count. Calling it when no result is open does nothing.
func (t *Tracker) CloseViewer(ctx context.Context) error {
	if t.Snapshot().State != StateViewing {
		return nil
	}

	count, err := t.backend.UnassignedCount(ctx, t.userID)
	if err != nil {
		te := ClassifyError(err)
		t.logger.Warn("count refresh on viewer close failed, using last known count", zap.Error(err))
		t.dispatch(ViewClosed{})
		return te
	}
	t.dispatch(ViewClosed{Count: count, Fresh: true})
	return nil
}

// DismissError clears the last surfaced error.
func (t *Tracker) DismissError() {
	t.dispatch(ErrorDismissed{})
}

// Close stops polling and pending retries and waits for background work.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.snap, _ = t.machine.Transition(t.snap, TornDown{})
	if t.pollCancel != nil {
		t.pollCancel()
		t.pollCancel = nil
	}
	if t.retryCancel != nil {
		t.retryCancel()
		t.retryCancel = nil
	}
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
	if w, ok := t.scheduler.(interface{ Wait() }); ok {
		w.Wait()
	}
}

// dispatch applies ev, runs timer effects under the lock, then notifies
// observers and runs the remaining effects.
func (t *Tracker) dispatch(ev Event) Snapshot {
	t.mu.Lock()
	if t.closed {
		snap := t.snap
		t.mu.Unlock()
		return snap
	}

	next, effects := t.machine.Transition(t.snap, ev)
	t.snap = next

	var deferred []Effect
	for _, eff := range effects {
		switch e := eff.(type) {
		case StartPoll:
			t.startPollLocked(e.Session)
		case StopPoll:
			t.stopPollLocked(e.SessionID)
		default:
			deferred = append(deferred, eff)
		}
	}

	observers := make([]func(Snapshot), 0, len(t.observers))
	for _, fn := range t.observers {
		observers = append(observers, fn)
	}
	t.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
	for _, eff := range deferred {
		t.run(eff)
	}
	return next
}

func (t *Tracker) run(eff Effect) {
	switch e := eff.(type) {
	case RefreshCounts:
		_, _ = t.LoadBaselineCounts(t.ctx)

	case PersistViewed:
		t.wg.Add(1)
		go func(id string) {
			defer t.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), t.cfg.ViewedTimeout)
			defer cancel()
			if err := t.backend.MarkViewed(ctx, id); err != nil {
				t.logger.Warn("failed to persist viewed flag", zap.String("result_id", id), zap.Error(err))
			}
		}(e.ResultID)

	case Alert:
		t.logger.Info("surfacing generation error", zap.String("kind", string(e.Err.Kind)), zap.String("message", e.Err.Message))
	}
}

func (t *Tracker) startPollLocked(session PollSession) {
	if t.pollCancel != nil {
		t.pollCancel()
	}
	id := session.ID
	t.pollID = id
	t.pollCancel = t.scheduler.Every(session.Interval, func() { t.tick(id) })
	t.logger.Debug("poll session started", zap.Uint64("session_id", id), zap.Duration("interval", session.Interval))
}

func (t *Tracker) stopPollLocked(id uint64) {
	if t.pollID != id || t.pollCancel == nil {
		return
	}
	t.pollCancel()
	t.pollCancel = nil
	t.pollID = 0
	t.logger.Debug("poll session stopped", zap.Uint64("session_id", id))
}

func (t *Tracker) tick(id uint64) {
	snap := t.dispatch(PollTicked{SessionID: id})
	if snap.Poll == nil || snap.Poll.ID != id {
		return
	}

	report, err := t.backend.CheckStatus(t.ctx, t.userID)
	if err != nil {
		te := ClassifyError(err)
		t.logger.Debug("poll status check failed, keep waiting",
			zap.Uint64("session_id", id), zap.Int("attempt", snap.Poll.Attempts), zap.String("kind", string(te.Kind)), zap.Error(err))
		return
	}
	t.dispatch(StatusObserved{Report: report, Source: SourcePoll, SessionID: id, At: t.now()})
}
