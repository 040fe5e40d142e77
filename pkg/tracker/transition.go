package tracker

import "time"

// Source tells the machine which handler produced a status observation.
type Source int

const (
	SourceRequest Source = iota
	SourcePoll
	SourceForeground
)

// Event is the input of the transition function.
type Event interface {
	event()
}

type (
	CountsLoaded struct {
		Count int
	}
	StatusObserved struct {
		Report    *StatusReport
		Source    Source
		SessionID uint64
		At        time.Time
	}
	EligibilityDenied struct {
		Err *Error
		At  time.Time
	}
	GenerationStarted struct {
		At time.Time
	}
	GenerationAccepted struct {
		At time.Time
	}
	GenerationSucceeded struct {
		Result *Result
	}
	GenerationFailed struct {
		Err *Error
		At  time.Time
	}
	PollTicked struct {
		SessionID uint64
	}
	ViewClosed struct {
		Count int
		Fresh bool
	}
)

type Backgrounded struct{}

type ViewOpened struct{}

type ErrorDismissed struct{}

type TornDown struct{}

func (CountsLoaded) event() {}
func (StatusObserved) event() {}
func (EligibilityDenied) event() {}
func (GenerationStarted) event() {}
func (GenerationAccepted) event() {}
func (GenerationSucceeded) event() {}
func (GenerationFailed) event() {}
func (PollTicked) event() {}
func (Backgrounded) event() {}
func (ViewOpened) event() {}
func (ViewClosed) event() {}
func (ErrorDismissed) event() {}
func (TornDown) event() {}

// Effect is an instruction for the interpreter produced by a transition.
type Effect interface {
	effect()
}

type (
	StartPoll struct {
		Session PollSession
	}
	StopPoll struct {
		SessionID uint64
	}
	RefreshCounts struct{}
	PersistViewed struct {
		ResultID string
	}
	Alert struct {
		Err *Error
	}
)

func (StartPoll) effect() {}
func (StopPoll) effect() {}
func (RefreshCounts) effect() {}
func (PersistViewed) effect() {}
func (Alert) effect() {}

// Machine holds the parameters of the transition function.
type Machine struct {
	Threshold    int
	MaxAttempts  int
	PollInterval time.Duration
}

// Transition is pure: it never performs I/O and never mutates s in place.
func (m Machine) Transition(s Snapshot, ev Event) (Snapshot, []Effect) {
	next, effects := m.apply(s, ev)
	next.Version = s.Version + 1
	return next, effects
}

func (m Machine) apply(s Snapshot, ev Event) (Snapshot, []Effect) {
	switch e := ev.(type) {
	case CountsLoaded:
		s.Count = e.Count
		s.CountKnown = true
		switch s.State {
		case StateGenerating, StateCompleted, StateViewing:
			return s, nil
		}
		s.State = m.baseline(e.Count)
		return s, nil

	case StatusObserved:
		return m.observe(s, e)

	case EligibilityDenied:
		if e.Err.Kind == KindAlreadyRunning {
			return m.adoptGenerating(s, e.At, e.At)
		}
		s.LastError = e.Err
		return s, []Effect{Alert{Err: e.Err}}

	case GenerationStarted:
		if s.State == StateViewing {
			return s, nil
		}
		s.State = StateGenerating
		s.StartedAt = e.At
		s.Result = nil
		s.LastError = nil
		return m.startPoll(s, e.At)

	case GenerationAccepted:
		if s.State != StateGenerating {
			return s, nil
		}
		return m.ensurePoll(s, e.At)

	case GenerationSucceeded:
		if s.State == StateViewing || e.Result == nil {
			return s, nil
		}
		return m.complete(s, e.Result)

	case GenerationFailed:
		if s.State != StateGenerating {
			return s, nil
		}
		if e.Err.Transient() {
			return m.ensurePoll(s, e.At)
		}
		s, effects := m.stopPoll(s)
		s.State = StateReadyToGenerate
		s.StartedAt = time.Time{}
		s.LastError = e.Err
		return s, append(effects, Alert{Err: e.Err})

	case PollTicked:
		if s.Poll == nil || s.Poll.ID != e.SessionID {
			return s, nil
		}
		p := *s.Poll
		p.Attempts++
		s.Poll = &p
		if p.Attempts < p.MaxAttempts {
			return s, nil
		}
		s, effects := m.stopPoll(s)
		if s.State != StateGenerating {
			return s, effects
		}
		timeout := NewError(KindTimeout, "", nil)
		s.State = StateReadyToGenerate
		s.StartedAt = time.Time{}
		s.LastError = timeout
		return s, append(effects, Alert{Err: timeout})

	case Backgrounded, TornDown:
		return m.stopPoll(s)

	case ViewOpened:
		if s.State != StateCompleted || s.Result == nil {
			return s, nil
		}
		r := *s.Result
		r.HasBeenViewed = true
		s.Result = &r
		s.State = StateViewing
		return s, []Effect{PersistViewed{ResultID: r.ID}}

	case ViewClosed:
		if s.State != StateViewing {
			return s, nil
		}
		if e.Fresh {
			s.Count = e.Count
			s.CountKnown = true
		}
		s.Result = nil
		s.State = m.idleState(s)
		return s, nil

	case ErrorDismissed:
		s.LastError = nil
		return s, nil
	}

	return s, nil
}

// observe applies a status report from any source.
func (m Machine) observe(s Snapshot, e StatusObserved) (Snapshot, []Effect) {
	if s.State == StateViewing || e.Report == nil {
		return s, nil
	}
	if e.Source == SourcePoll && (s.Poll == nil || s.Poll.ID != e.SessionID) {
		return s, nil
	}

	r := e.Report
	switch r.Status {
	case StatusCompleted:
		// A result the user already opened is never shown again.
		if r.Result == nil || r.Result.HasBeenViewed {
			return s, nil
		}
		return m.complete(s, r.Result)

	case StatusFailed:
		wasGenerating := s.State == StateGenerating
		if s.State == StateCompleted {
			return s, nil
		}
		s, effects := m.stopPoll(s)
		if !wasGenerating {
			s.State = m.idleState(s)
			return s, effects
		}
		failure := failureFromReport(r)
		s.State = StateReadyToGenerate
		s.StartedAt = time.Time{}
		s.LastError = failure
		return s, append(effects, Alert{Err: failure}, RefreshCounts{})

	case StatusPending, StatusProcessing:
		return m.adoptGenerating(s, r.RequestedAt, e.At)

	case StatusNone:
		s, effects := m.stopPoll(s)
		switch s.State {
		case StateGenerating:
			s.State = StateReadyToGenerate
			s.StartedAt = time.Time{}
		case StateCompleted:
		default:
			s.State = m.idleState(s)
		}
		return s, effects
	}

	return s, nil
}

// adoptGenerating moves to Generating when the server owns a job and makes
// sure a poll session is running.
func (m Machine) adoptGenerating(s Snapshot, requestedAt, at time.Time) (Snapshot, []Effect) {
	if s.State != StateGenerating {
		s.State = StateGenerating
		s.Result = nil
		s.LastError = nil
		s.StartedAt = requestedAt
		if s.StartedAt.IsZero() {
			s.StartedAt = at
		}
	}
	return m.ensurePoll(s, at)
}

func (m Machine) complete(s Snapshot, r *Result) (Snapshot, []Effect) {
	s, effects := m.stopPoll(s)
	s.State = StateCompleted
	s.Result = r
	s.StartedAt = time.Time{}
	s.LastError = nil
	return s, append(effects, RefreshCounts{})
}

func (m Machine) ensurePoll(s Snapshot, at time.Time) (Snapshot, []Effect) {
	if s.Poll != nil {
		return s, nil
	}
	return m.startPoll(s, at)
}

func (m Machine) startPoll(s Snapshot, at time.Time) (Snapshot, []Effect) {
	s, effects := m.stopPoll(s)
	s.pollSeq++
	p := PollSession{
		ID:          s.pollSeq,
		MaxAttempts: m.MaxAttempts,
		Interval:    m.PollInterval,
		StartedAt:   at,
	}
	s.Poll = &p
	return s, append(effects, StartPoll{Session: p})
}

func (m Machine) stopPoll(s Snapshot) (Snapshot, []Effect) {
	if s.Poll == nil {
		return s, nil
	}
	id := s.Poll.ID
	s.Poll = nil
	return s, []Effect{StopPoll{SessionID: id}}
}

func (m Machine) baseline(count int) State {
	if count >= m.Threshold {
		return StateReadyToGenerate
	}
	return StateThresholdNotMet
}

// idleState is the resting state once nothing is generated or shown.
func (m Machine) idleState(s Snapshot) State {
	if !s.CountKnown {
		return StateReadyToGenerate
	}
	return m.baseline(s.Count)
}
