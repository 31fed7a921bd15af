package frankfurter

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// EarliestDate is the first day with published reference rates.
var EarliestDate = NewDate(1999, 1, 4)

var validate = newValidator()

// today returns the current UTC day.
var today = func() Date { return DateOf(time.Now().UTC()) }

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("param"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// validateFields applies the `validate` struct tags of req and reports the first failure.
func validateFields(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:  fe.Field(),
			Reason: fmt.Sprintf("%v is not a valid %s value", fe.Value(), fe.Tag()),
		}
	}
	return &ValidationError{Reason: err.Error()}
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: fmt.Sprintf("must be positive, got %s", amount)}
	}
	return nil
}

func validateDate(field string, d Date) error {
	if d.Before(EarliestDate) {
		return &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("%s is before the earliest available date %s", d, EarliestDate),
		}
	}
	return nil
}

// validateNotFuture rejects days after the current UTC day.
func validateNotFuture(field string, d Date) error {
	if now := today(); d.After(now) {
		return &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("%s is in the future (today is %s)", d, now),
		}
	}
	return nil
}

func validateTargets(base Currency, targets []Currency) error {
	seen := make(map[Currency]struct{}, len(targets))
	for _, t := range targets {
		if base != "" && t == base {
			return &ValidationError{Field: "to", Reason: fmt.Sprintf("target %s equals the base currency", t)}
		}
		if _, dup := seen[t]; dup {
			return &ValidationError{Field: "to", Reason: fmt.Sprintf("target %s listed twice", t)}
		}
		seen[t] = struct{}{}
	}
	return nil
}

// rateQueryParams encodes the filters shared by the rate endpoints, in amount, from, to order.
func rateQueryParams(amount decimal.Decimal, base Currency, targets []Currency) QueryParams {
	var params QueryParams
	if !amount.IsZero() {
		params = append(params, QueryParam{Key: "amount", Value: amount.String()})
	}
	if base != "" {
		params = append(params, QueryParam{Key: "from", Value: base.String()})
	}
	if len(targets) > 0 {
		params = append(params, QueryParam{Key: "to", Value: joinCurrencies(targets)})
	}
	return params
}
