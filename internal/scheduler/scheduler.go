package scheduler

import (
	"context"
	"log/slog"
	"time"

	"scroll_feed/internal/state"
)

// Submitter re-issues the current article request.
type Submitter interface {
	Submit() (state.FetchArticles, error)
}

// Scheduler re-submits the article request on a fixed interval so that a
// watching view stays current. Overlapping fetches are resolved by the
// effect processor, which keeps only the latest.
type Scheduler struct {
	submitter Submitter
	interval  time.Duration
	logger    *slog.Logger
}

func NewScheduler(submitter Submitter, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		submitter: submitter,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start submits immediately and then once per interval until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runSubmit()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSubmit()
		}
	}
}

func (s *Scheduler) runSubmit() {
	req, err := s.submitter.Submit()
	if err != nil {
		s.logger.Error("submit failed", "error", err)
		return
	}

	s.logger.Debug("submitted",
		"tags", req.SelectedTags,
		"reading_time", req.ReadingTime,
	)
}
