package tracker

import (
	"time"

	"go.uber.org/zap"
)

const (
	DefaultThreshold       = 10
	DefaultMaxAttempts     = 80
	DefaultPollInterval    = 3 * time.Second
	DefaultForegroundRetry = 5 * time.Second
	DefaultViewedTimeout   = 10 * time.Second
)

type Config struct {
	Threshold       int
	MaxAttempts     int
	PollInterval    time.Duration
	ForegroundRetry time.Duration
	ViewedTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Threshold:       DefaultThreshold,
		MaxAttempts:     DefaultMaxAttempts,
		PollInterval:    DefaultPollInterval,
		ForegroundRetry: DefaultForegroundRetry,
		ViewedTimeout:   DefaultViewedTimeout,
	}
}

// Option allows overriding the defaults of a Tracker.
type Option func(*options)

type options struct {
	cfg       Config
	logger    *zap.Logger
	scheduler Scheduler
	now       func() time.Time
}

func WithConfig(cfg Config) Option {
	return func(o *options) {
		if cfg.Threshold > 0 {
			o.cfg.Threshold = cfg.Threshold
		}
		if cfg.MaxAttempts > 0 {
			o.cfg.MaxAttempts = cfg.MaxAttempts
		}
		if cfg.PollInterval > 0 {
			o.cfg.PollInterval = cfg.PollInterval
		}
		if cfg.ForegroundRetry > 0 {
			o.cfg.ForegroundRetry = cfg.ForegroundRetry
		}
		if cfg.ViewedTimeout > 0 {
			o.cfg.ViewedTimeout = cfg.ViewedTimeout
		}
	}
}

func WithThreshold(n int) Option {
	return func(o *options) {
		o.cfg.Threshold = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
