package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/frankfurter/internal/domain"
	"github.com/samvad-hq/frankfurter/pkg/frankfurter"
	"github.com/samvad-hq/frankfurter/pkg/publishers"
	"github.com/samvad-hq/frankfurter/pkg/watchlist"
)

// fakeSource returns preset responses keyed by base currency.
type fakeSource struct {
	mu        sync.Mutex
	responses map[frankfurter.Currency]*frankfurter.ConvertResponse
	errs      map[frankfurter.Currency]error
	requests  []frankfurter.ConvertRequest
}

func (f *fakeSource) Convert(_ context.Context, req frankfurter.ConvertRequest) (*frankfurter.ConvertResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.errs[req.From]; err != nil {
		return nil, err
	}
	return f.responses[req.From], nil
}

// fakePublisher records published events and can inject errors.
type fakePublisher struct {
	mu        sync.Mutex
	events    []publishers.RateEvent
	delivered int
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.RateEvent) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return f.delivered, f.err
}

// fakeStore keeps snapshots in memory.
type fakeStore struct {
	mu      sync.Mutex
	seen    map[string]bool
	latest  map[string]domain.RateSnapshot
	seenErr error
}

func (f *fakeStore) SeenSnapshot(fp string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seenErr != nil {
		return false, f.seenErr
	}
	return f.seen[fp], nil
}

func (f *fakeStore) RecordSnapshot(s domain.RateSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.latest == nil {
		f.latest = make(map[string]domain.RateSnapshot)
	}
	f.seen[s.Fingerprint()] = true
	f.latest[s.WatchID] = s
	return nil
}

func (f *fakeStore) LatestSnapshot(id string) (domain.RateSnapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.latest[id]
	return s, ok, nil
}

func eurResponse(date, usd string) *frankfurter.ConvertResponse {
	return &frankfurter.ConvertResponse{
		Amount: decimal.NewFromInt(1),
		Base:   "EUR",
		Date:   frankfurter.MustParseDate(date),
		Rates:  map[frankfurter.Currency]decimal.Decimal{"USD": decimal.RequireFromString(usd)},
	}
}

var eurWatch = watchlist.Watch{ID: "eur-usd", Name: "EUR to USD", Base: "EUR", Targets: []string{"USD"}}

func TestProcessorPublishesThenSkipsUnchangedRates(t *testing.T) {
	source := &fakeSource{responses: map[frankfurter.Currency]*frankfurter.ConvertResponse{
		"EUR": eurResponse("2024-01-02", "1.0956"),
	}}
	pub := &fakePublisher{delivered: 1}
	store := &fakeStore{}
	processor := NewProcessor(source, pub, store, nil)

	outcome, err := processor.Process(context.Background(), eurWatch)
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)

	outcome, err = processor.Process(context.Background(), eurWatch)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)

	require.Len(t, pub.events, 1)
	evt := pub.events[0]
	assert.Equal(t, "eur-usd", evt.WatchID)
	assert.Equal(t, "2024-01-02", evt.Date)
	assert.Empty(t, evt.PreviousDate)

	require.Len(t, source.requests, 2)
	assert.Equal(t, frankfurter.Currency("EUR"), source.requests[0].From)
	assert.Equal(t, []frankfurter.Currency{"USD"}, source.requests[0].To)
}

func TestProcessorCarriesPreviousSnapshot(t *testing.T) {
	source := &fakeSource{responses: map[frankfurter.Currency]*frankfurter.ConvertResponse{
		"EUR": eurResponse("2024-01-02", "1.0956"),
	}}
	pub := &fakePublisher{delivered: 1}
	processor := NewProcessor(source, pub, &fakeStore{}, nil)

	_, err := processor.Process(context.Background(), eurWatch)
	require.NoError(t, err)

	source.responses["EUR"] = eurResponse("2024-01-03", "1.0919")
	_, err = processor.Process(context.Background(), eurWatch)
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	second := pub.events[1]
	assert.Equal(t, "2024-01-02", second.PreviousDate)
	assert.True(t, second.Changes["USD"].Equal(decimal.RequireFromString("-0.0037")), "change = %s", second.Changes["USD"])
}

func TestProcessorDoesNotRecordWhenNoSinkAccepted(t *testing.T) {
	source := &fakeSource{responses: map[frankfurter.Currency]*frankfurter.ConvertResponse{
		"EUR": eurResponse("2024-01-02", "1.0956"),
	}}
	store := &fakeStore{}
	processor := NewProcessor(source, &fakePublisher{delivered: 0, err: errors.New("sink down")}, store, nil)

	_, err := processor.Process(context.Background(), eurWatch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")
	assert.Empty(t, store.seen)

	processor = NewProcessor(source, &fakePublisher{}, store, nil)
	_, err = processor.Process(context.Background(), eurWatch)
	assert.ErrorIs(t, err, ErrNoPublisherAccepted)
}

func TestProcessorRecordsOnPartialDelivery(t *testing.T) {
	source := &fakeSource{responses: map[frankfurter.Currency]*frankfurter.ConvertResponse{
		"EUR": eurResponse("2024-01-02", "1.0956"),
	}}
	store := &fakeStore{}
	processor := NewProcessor(source, &fakePublisher{delivered: 1, err: errors.New("one sink down")}, store, nil)

	outcome, err := processor.Process(context.Background(), eurWatch)
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)
	assert.Len(t, store.seen, 1)
}

func TestProcessorTreatsLookupFailureAsUnseen(t *testing.T) {
	source := &fakeSource{responses: map[frankfurter.Currency]*frankfurter.ConvertResponse{
		"EUR": eurResponse("2024-01-02", "1.0956"),
	}}
	pub := &fakePublisher{delivered: 1}
	processor := NewProcessor(source, pub, &fakeStore{seenErr: errors.New("lookup failed")}, nil)

	outcome, err := processor.Process(context.Background(), eurWatch)
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)
	assert.Len(t, pub.events, 1)
}

func TestProcessorKeepsClientErrorKind(t *testing.T) {
	source := &fakeSource{errs: map[frankfurter.Currency]error{
		"EUR": &frankfurter.InvalidResponseError{Status: 404, URL: "https://example.com/v1/latest"},
	}}
	processor := NewProcessor(source, &fakePublisher{delivered: 1}, nil, nil)

	_, err := processor.Process(context.Background(), eurWatch)
	assert.ErrorIs(t, err, frankfurter.ErrInvalidResponse)
}

func TestServiceRunAggregatesErrors(t *testing.T) {
	source := &fakeSource{
		responses: map[frankfurter.Currency]*frankfurter.ConvertResponse{"EUR": eurResponse("2024-01-02", "1.0956")},
		errs:      map[frankfurter.Currency]error{"USD": errors.New("boom")},
	}
	svc := NewService(NewProcessor(source, &fakePublisher{delivered: 1}, &fakeStore{}, nil), 0)

	summary, err := svc.Run(context.Background(), []watchlist.Watch{
		eurWatch,
		{ID: "usd-inr", Base: "USD", Targets: []string{"INR"}},
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "usd-inr"), "error should name the failing watch: %v", err)
	assert.Equal(t, Summary{Published: 1, Failed: 1}, summary)
}

func TestServiceRunAllStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{}
	svc := NewService(NewProcessor(source, nil, nil, nil), 0)
	summary, errs := svc.runAll(ctx, []watchlist.Watch{eurWatch})
	assert.Empty(t, errs)
	assert.Equal(t, Summary{}, summary)
	assert.Empty(t, source.requests)
}

func TestServiceRunRejectsEmptyWatchlist(t *testing.T) {
	svc := NewService(NewProcessor(&fakeSource{}, nil, nil, nil), 0)
	_, err := svc.Run(context.Background(), nil)
	assert.Error(t, err)

	var nilSvc *Service
	_, err = nilSvc.Run(context.Background(), []watchlist.Watch{eurWatch})
	assert.Error(t, err)
}
