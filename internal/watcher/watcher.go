package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/frankfurter/pkg/watchlist"
)

// Service runs a poll pass over a set of watches.
type Service struct {
	processor *Processor
	delay     time.Duration
	log       Logger
}

// NewService wires a watcher around a processor. delay throttles consecutive watches.
func NewService(processor *Processor, delay time.Duration) *Service {
	var log Logger
	if processor != nil {
		log = processor.log
	}
	return &Service{
		processor: processor,
		delay:     delay,
		log:       log,
	}
}

// Summary counts the outcomes of a poll pass.
type Summary struct {
	Published int
	Unchanged int
	Failed    int
}

// Run polls every watch once. Per-watch errors are joined; none is retried.
func (s *Service) Run(ctx context.Context, watches []watchlist.Watch) (Summary, error) {
	if s == nil || s.processor == nil {
		return Summary{}, fmt.Errorf("watcher service is not initialized")
	}
	if len(watches) == 0 {
		return Summary{}, fmt.Errorf("no watches configured")
	}

	summary, errs := s.runAll(ctx, watches)
	return summary, errors.Join(errs...)
}

func (s *Service) runAll(ctx context.Context, watches []watchlist.Watch) (Summary, []error) {
	var (
		summary Summary
		errs    []error
	)

	for i, w := range watches {
		if ctx.Err() != nil {
			return summary, errs
		}

		outcome, err := s.processor.Process(ctx, w)
		switch {
		case err != nil:
			summary.Failed++
			errs = append(errs, err)
			s.log.ErrorObj("watch poll failed", "watch_error", map[string]any{
				"watch_id": w.ID,
				"error":    err.Error(),
			})
		case outcome == OutcomePublished:
			summary.Published++
		default:
			summary.Unchanged++
		}

		if s.delay > 0 && i < len(watches)-1 {
			timer := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return summary, errs
			case <-timer.C:
			}
		}
	}
	return summary, errs
}
