package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/dealerdesk/dealerdesk/internal/ports"
)

// defaultReapInterval is how often expired sessions are purged when no
// interval is configured.
const defaultReapInterval = time.Hour

// SessionReaperServiceOptions groups dependencies for SessionReaperService.
type SessionReaperServiceOptions struct {
	Reaper   ports.SessionReaper
	Interval time.Duration
	Logger   *slog.Logger
}

// SessionReaperService periodically purges expired sessions. Purging is an
// optimization: expired sessions already read as absent, so a failed sweep
// only delays space reclamation.
type SessionReaperService struct {
	reaper   ports.SessionReaper
	interval time.Duration
	logger   *slog.Logger
}

// NewSessionReaperService constructs a new SessionReaperService.
func NewSessionReaperService(opts SessionReaperServiceOptions) (*SessionReaperService, error) {
	if opts.Reaper == nil {
		return nil, errors.New("SessionReaper is required")
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = defaultReapInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionReaperService{
		reaper:   opts.Reaper,
		interval: interval,
		logger:   logger.With("component", "session_reaper"),
	}, nil
}

// Run starts the reap loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *SessionReaperService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting session reaper", "interval", s.interval)

	// Jitter so multiple instances starting together do not sweep in lockstep.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.reapOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "session reaper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			s.reapOnce(ctx)
		}
	}
}

// reapOnce performs a single sweep. Failures are logged and the loop keeps
// running.
func (s *SessionReaperService) reapOnce(ctx context.Context) {
	start := time.Now()
	count, err := s.reaper.DeleteExpired(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		s.logger.ErrorContext(ctx, "session reap failed", "error", err)
		return
	}

	if count > 0 {
		s.logger.InfoContext(ctx, "expired sessions purged",
			"count", count,
			"elapsed", time.Since(start),
		)
	}
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *SessionReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
