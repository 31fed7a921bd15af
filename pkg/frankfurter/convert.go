package frankfurter

import "github.com/shopspring/decimal"

const latestEndpoint = "latest"

// ConvertRequest asks for the rates of a single day, the latest one unless Date is set.
type ConvertRequest struct {
	// Date selects a historical day. Zero means latest.
	Date Date `param:"date"`
	// Amount to convert. Zero means the API default of 1.
	Amount decimal.Decimal `param:"amount"`
	// From is the base currency. Empty means the API default (EUR).
	From Currency `param:"from" validate:"omitempty,iso4217"`
	// To restricts the returned rates. Empty means every supported currency.
	To []Currency `param:"to" validate:"omitempty,dive,iso4217"`
}

// ConvertResponse holds the rates of one day.
type ConvertResponse struct {
	Amount decimal.Decimal              `json:"amount" yaml:"amount"`
	Base   Currency                     `json:"base" yaml:"base"`
	Date   Date                         `json:"date" yaml:"date"`
	Rates  map[Currency]decimal.Decimal `json:"rates" yaml:"rates"`
}

func (r ConvertRequest) Endpoint() string {
	if r.Date.IsZero() {
		return latestEndpoint
	}
	return r.Date.String()
}

func (r ConvertRequest) Validate() error {
	if err := validateFields(r); err != nil {
		return err
	}
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if !r.Date.IsZero() {
		if err := validateDate("date", r.Date); err != nil {
			return err
		}
		if err := validateNotFuture("date", r.Date); err != nil {
			return err
		}
	}
	return validateTargets(r.From, r.To)
}

func (r ConvertRequest) QueryParams() QueryParams {
	return rateQueryParams(r.Amount, r.From, r.To)
}
