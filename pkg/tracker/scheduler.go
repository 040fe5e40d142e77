package tracker

import (
	"sync"
	"time"
)

// Scheduler runs timer callbacks. Cancel funcs must be safe to call more
// than once and must not block on the callback.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
	After(delay time.Duration, fn func()) (cancel func())
}

// TimerScheduler backs the Scheduler with time.Ticker and time.Timer.
// Callbacks of one Every loop run sequentially and never overlap.
type TimerScheduler struct {
	wg sync.WaitGroup
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) Every(interval time.Duration, fn func()) func() {
	done := make(chan struct{})
	var once sync.Once

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

func (s *TimerScheduler) After(delay time.Duration, fn func()) func() {
	done := make(chan struct{})
	var once sync.Once

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			fn()
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

// Wait blocks until every loop and timer started by s has returned.
func (s *TimerScheduler) Wait() {
	s.wg.Wait()
}
