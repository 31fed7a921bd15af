package frankfurter

import "sort"

const currenciesEndpoint = "currencies"

// CurrenciesRequest lists the supported currencies.
type CurrenciesRequest struct {
	NoQueryParams
}

// CurrenciesResponse maps currency codes to their full names.
type CurrenciesResponse map[Currency]string

func (CurrenciesRequest) Endpoint() string { return currenciesEndpoint }

func (CurrenciesRequest) Validate() error { return nil }

// Codes returns the currency codes in alphabetical order.
func (r CurrenciesResponse) Codes() []Currency {
	codes := make([]Currency, 0, len(r))
	for c := range r {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
