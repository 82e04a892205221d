// Package timeselector resolves the time window of a dashboard view from the
// request, falling back to the window the user last selected.
package timeselector

import (
	"context"
	"fmt"
	"time"

	"github.com/dashprint/backend/internal/domain/timeperiod"
	"go.uber.org/zap"
)

// DashboardProfileIdx is the profile key prefix of the dashboard time filter
const DashboardProfileIdx = "web.dashboard.filter"

// ProfileReader reads stored user profile values. A missing value is
// reported as an empty string.
type ProfileReader interface {
	GetString(ctx context.Context, idx string, idx2 uint64) (string, error)
}

// Options selects the stored window and optionally overrides either end
type Options struct {
	ProfileIdx  string
	ProfileIdx2 uint64
	From        *string
	To          *string
}

// Service resolves time periods
type Service struct {
	profiles ProfileReader
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a new Service. profiles may be nil, in which case only
// the request values and the defaults are used.
func NewService(profiles ProfileReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		profiles: profiles,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the clock used to resolve relative expressions
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Resolve returns the effective period. Explicit values win over stored ones,
// stored ones over the default "now-1h" to "now".
func (s *Service) Resolve(ctx context.Context, opts Options) (timeperiod.Period, error) {
	from, err := s.pick(ctx, opts, opts.From, ".from", timeperiod.DefaultFrom)
	if err != nil {
		return timeperiod.Period{}, err
	}
	to, err := s.pick(ctx, opts, opts.To, ".to", timeperiod.DefaultTo)
	if err != nil {
		return timeperiod.Period{}, err
	}

	period, err := timeperiod.Resolve(from, to, s.now())
	if err != nil {
		return timeperiod.Period{}, err
	}
	period.ProfileIdx = opts.ProfileIdx
	period.ProfileIdx2 = opts.ProfileIdx2
	return period, nil
}

func (s *Service) pick(ctx context.Context, opts Options, explicit *string, suffix, fallback string) (string, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if s.profiles == nil || opts.ProfileIdx == "" {
		return fallback, nil
	}

	stored, err := s.profiles.GetString(ctx, opts.ProfileIdx+suffix, opts.ProfileIdx2)
	if err != nil {
		return "", fmt.Errorf("failed to read profile %s%s: %w", opts.ProfileIdx, suffix, err)
	}
	if stored == "" {
		return fallback, nil
	}
	if !timeperiod.IsValid(stored) {
		s.logger.Warn("ignoring invalid stored time expression",
			zap.String("idx", opts.ProfileIdx+suffix),
			zap.Uint64("idx2", opts.ProfileIdx2),
			zap.String("value", stored))
		return fallback, nil
	}
	return stored, nil
}
