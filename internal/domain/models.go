package domain

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// RateSnapshot is one observation of a watch: the rates of a single publication day.
type RateSnapshot struct {
	WatchID   string                     `json:"watch_id"`
	WatchName string                     `json:"watch_name"`
	Base      string                     `json:"base"`
	Date      string                     `json:"date"`
	Amount    decimal.Decimal            `json:"amount"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

// Fingerprint identifies the snapshot content. Two polls returning the same day and
// the same rates for a watch share a fingerprint.
func (s RateSnapshot) Fingerprint() string {
	codes := make([]string, 0, len(s.Rates))
	for code := range s.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var sb strings.Builder
	sb.WriteString(s.WatchID)
	sb.WriteByte('|')
	sb.WriteString(s.Base)
	sb.WriteByte('|')
	sb.WriteString(s.Date)
	sb.WriteByte('|')
	sb.WriteString(s.Amount.String())
	for _, code := range codes {
		sb.WriteByte('|')
		sb.WriteString(code)
		sb.WriteByte('=')
		sb.WriteString(s.Rates[code].String())
	}

	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
