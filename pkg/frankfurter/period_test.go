package frankfurter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodRequestEndpoint(t *testing.T) {
	assert.Equal(t, "2024-01-01..2024-01-31", PeriodRequest{
		Start: NewDate(2024, 1, 1),
		End:   NewDate(2024, 1, 31),
	}.Endpoint())
	assert.Equal(t, "2024-01-01..", PeriodRequest{Start: NewDate(2024, 1, 1)}.Endpoint())
}

func TestPeriodRequestQueryParams(t *testing.T) {
	params := PeriodRequest{
		Start:  NewDate(2024, 1, 1),
		Amount: decimal.NewFromInt(100),
		To:     []Currency{"SEK"},
	}.QueryParams()
	assert.Equal(t, QueryParams{{Key: "amount", Value: "100"}, {Key: "to", Value: "SEK"}}, params)
}

func TestPeriodRequestValidate(t *testing.T) {
	start := NewDate(2024, 3, 1)
	tests := []struct {
		name  string
		req   PeriodRequest
		field string
	}{
		{name: "open ended", req: PeriodRequest{Start: start}},
		{name: "single day", req: PeriodRequest{Start: start, End: start}},
		{name: "closed range", req: PeriodRequest{Start: start, End: NewDate(2024, 3, 31), From: "USD", To: []Currency{"EUR"}}},
		{name: "missing start", req: PeriodRequest{End: start}, field: "start"},
		{name: "end before start", req: PeriodRequest{Start: start, End: NewDate(2024, 2, 28)}, field: "end"},
		{name: "start before data", req: PeriodRequest{Start: NewDate(1998, 12, 31)}, field: "start"},
		{name: "invalid base", req: PeriodRequest{Start: start, From: "EU"}, field: "from"},
		{name: "negative amount", req: PeriodRequest{Start: start, Amount: decimal.RequireFromString("-0.5")}, field: "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
