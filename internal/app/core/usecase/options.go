package usecase

import (
	"log/slog"
	"time"
)

// Option 服務共用的可選設定
type Option func(*settings)

type settings struct {
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		now:    time.Now,
		loc:    time.UTC,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock 注入時鐘 (測試用)
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation 月份與日期切分使用的時區
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}
