package publishers

import (
	"github.com/shopspring/decimal"

	"github.com/samvad-hq/frankfurter/internal/domain"
)

func sampleEvent() RateEvent {
	return NewRateEvent(domain.RateSnapshot{
		WatchID:   "eur-usd",
		WatchName: "EUR to USD",
		Base:      "EUR",
		Date:      "2024-01-02",
		Amount:    decimal.NewFromInt(1),
		Rates:     map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.0956")},
	}, nil)
}
