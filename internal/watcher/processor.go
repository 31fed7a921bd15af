package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/samvad-hq/frankfurter/internal/domain"
	"github.com/samvad-hq/frankfurter/internal/logger"
	"github.com/samvad-hq/frankfurter/pkg/frankfurter"
	"github.com/samvad-hq/frankfurter/pkg/publishers"
	"github.com/samvad-hq/frankfurter/pkg/watchlist"
)

// ErrNoPublisherAccepted is returned when every sink rejected an event.
var ErrNoPublisherAccepted = errors.New("no publisher accepted the event")

// Outcome describes what a single watch poll did.
type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeUnchanged Outcome = "unchanged"
)

// Processor polls one watch and publishes its rates when they changed.
type Processor struct {
	source    RateSource
	publisher EventPublisher
	store     SnapshotStore
	log       Logger
}

// NewProcessor wires a processor. A nil store disables dedupe.
func NewProcessor(source RateSource, pub EventPublisher, store SnapshotStore, log Logger) *Processor {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Processor{
		source:    source,
		publisher: pub,
		store:     store,
		log:       log,
	}
}

// Process fetches the latest rates of w, skips them if already published and
// otherwise publishes a RateEvent and records the snapshot.
func (p *Processor) Process(ctx context.Context, w watchlist.Watch) (Outcome, error) {
	if p == nil || p.source == nil {
		return "", fmt.Errorf("processor is not initialized")
	}

	resp, err := p.source.Convert(ctx, w.ConvertRequest())
	if err != nil {
		return "", fmt.Errorf("fetch rates for watch %s: %w", w.ID, err)
	}
	snapshot := snapshotOf(w, resp)
	fingerprint := snapshot.Fingerprint()

	if p.seen(w, fingerprint) {
		p.log.DebugObj("rates unchanged", "watch_unchanged", map[string]any{
			"watch_id": w.ID,
			"date":     snapshot.Date,
		})
		return OutcomeUnchanged, nil
	}

	evt := publishers.NewRateEvent(snapshot, p.previous(w))
	if p.publisher != nil {
		delivered, err := p.publisher.Publish(ctx, evt)
		if delivered == 0 {
			if err == nil {
				err = ErrNoPublisherAccepted
			}
			return "", fmt.Errorf("publish watch %s: %w", w.ID, err)
		}
		if err != nil {
			p.log.WarnObj("rate event partially published", "publish_warning", map[string]any{
				"watch_id":  w.ID,
				"delivered": delivered,
				"error":     err.Error(),
			})
		}
	}

	if p.store != nil {
		if err := p.store.RecordSnapshot(snapshot); err != nil {
			return "", fmt.Errorf("record snapshot for watch %s: %w", w.ID, err)
		}
	}

	p.log.InfoObj("rate event published", "watch_published", map[string]any{
		"watch_id":      w.ID,
		"date":          snapshot.Date,
		"rates":         len(snapshot.Rates),
		"previous_date": evt.PreviousDate,
	})
	return OutcomePublished, nil
}

// seen treats lookup failures as unseen so a broken store never silences events.
func (p *Processor) seen(w watchlist.Watch, fingerprint string) bool {
	if p.store == nil {
		return false
	}
	seen, err := p.store.SeenSnapshot(fingerprint)
	if err != nil {
		p.log.WarnObj("snapshot lookup failed", "dedupe_error", map[string]any{
			"watch_id": w.ID,
			"error":    err.Error(),
		})
		return false
	}
	return seen
}

func (p *Processor) previous(w watchlist.Watch) *domain.RateSnapshot {
	if p.store == nil {
		return nil
	}
	prev, found, err := p.store.LatestSnapshot(w.ID)
	if err != nil {
		p.log.WarnObj("previous snapshot lookup failed", "dedupe_error", map[string]any{
			"watch_id": w.ID,
			"error":    err.Error(),
		})
		return nil
	}
	if !found {
		return nil
	}
	return &prev
}

func snapshotOf(w watchlist.Watch, resp *frankfurter.ConvertResponse) domain.RateSnapshot {
	rates := make(map[string]decimal.Decimal, len(resp.Rates))
	for code, rate := range resp.Rates {
		rates[code.String()] = rate
	}
	return domain.RateSnapshot{
		WatchID:   w.ID,
		WatchName: w.Name,
		Base:      resp.Base.String(),
		Date:      resp.Date.String(),
		Amount:    resp.Amount,
		Rates:     rates,
	}
}
