package frankfurter

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PeriodRequest asks for the daily rates between Start and End inclusive.
// A zero End leaves the period open up to the latest available day.
type PeriodRequest struct {
	Start  Date            `param:"start"`
	End    Date            `param:"end"`
	Amount decimal.Decimal `param:"amount"`
	From   Currency        `param:"from" validate:"omitempty,iso4217"`
	To     []Currency      `param:"to" validate:"omitempty,dive,iso4217"`
}

// PeriodResponse holds one set of rates per published day.
type PeriodResponse struct {
	Amount    decimal.Decimal                       `json:"amount" yaml:"amount"`
	Base      Currency                              `json:"base" yaml:"base"`
	StartDate Date                                  `json:"start_date" yaml:"start_date"`
	EndDate   Date                                  `json:"end_date" yaml:"end_date"`
	Rates     map[Date]map[Currency]decimal.Decimal `json:"rates" yaml:"rates"`
}

func (r PeriodRequest) Endpoint() string {
	return r.Start.String() + ".." + r.End.String()
}

func (r PeriodRequest) Validate() error {
	if r.Start.IsZero() {
		return &ValidationError{Field: "start", Reason: "start date is required"}
	}
	if err := validateFields(r); err != nil {
		return err
	}
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if err := validateDate("start", r.Start); err != nil {
		return err
	}
	if !r.End.IsZero() && r.End.Before(r.Start) {
		return &ValidationError{Field: "end", Reason: "end date " + r.End.String() + " is before start date " + r.Start.String()}
	}
	return validateTargets(r.From, r.To)
}

func (r PeriodRequest) QueryParams() QueryParams {
	return rateQueryParams(r.Amount, r.From, r.To)
}

// Dates returns the days present in the response in ascending order.
func (r *PeriodResponse) Dates() []Date {
	dates := make([]Date, 0, len(r.Rates))
	for d := range r.Rates {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
