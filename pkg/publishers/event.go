package publishers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/samvad-hq/frankfurter/internal/domain"
)

// RateEvent is the payload published when a watch observes new rates.
type RateEvent struct {
	WatchID      string                     `json:"watch_id"`
	WatchName    string                     `json:"watch_name"`
	Base         string                     `json:"base"`
	Date         string                     `json:"date"`
	Amount       decimal.Decimal            `json:"amount"`
	Rates        map[string]decimal.Decimal `json:"rates"`
	PreviousDate string                     `json:"previous_date,omitempty"`
	Changes      map[string]decimal.Decimal `json:"changes,omitempty"`
	CollectedAt  time.Time                  `json:"collected_at"`
}

// NewRateEvent builds the event for snapshot. When previous is non-nil, Changes holds
// the rate delta of every currency quoted in both snapshots.
func NewRateEvent(snapshot domain.RateSnapshot, previous *domain.RateSnapshot) RateEvent {
	evt := RateEvent{
		WatchID:     snapshot.WatchID,
		WatchName:   snapshot.WatchName,
		Base:        snapshot.Base,
		Date:        snapshot.Date,
		Amount:      snapshot.Amount,
		Rates:       snapshot.Rates,
		CollectedAt: time.Now().UTC(),
	}
	if previous == nil {
		return evt
	}

	evt.PreviousDate = previous.Date
	changes := make(map[string]decimal.Decimal, len(snapshot.Rates))
	for code, rate := range snapshot.Rates {
		if old, ok := previous.Rates[code]; ok {
			changes[code] = rate.Sub(old)
		}
	}
	if len(changes) > 0 {
		evt.Changes = changes
	}
	return evt
}

// attributes are the routing attributes attached to queue and topic messages.
func (e RateEvent) attributes() map[string]string {
	return map[string]string{
		"watch_id": e.WatchID,
		"base":     e.Base,
		"date":     e.Date,
	}
}
