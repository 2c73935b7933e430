package quotes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

type stubFetcher struct {
	prices map[string]decimal.Decimal
	calls  int
}

func (f *stubFetcher) Fetch(ctx context.Context, ticker string) (decimal.Decimal, error) {
	f.calls++
	if p, ok := f.prices[ticker]; ok {
		return p, nil
	}
	return decimal.Zero, &FetchError{Ticker: ticker, Err: errors.New("unavailable")}
}

type memStore struct {
	quotes map[string]models.Quote
}

func (s *memStore) GetQuote(ticker string) (*models.Quote, error) {
	q, ok := s.quotes[ticker]
	if !ok {
		return nil, fmt.Errorf("quote not found: %s: %w", ticker, models.ErrNotFound)
	}
	return &q, nil
}

func (s *memStore) SaveQuote(q *models.Quote) error {
	s.quotes[q.Ticker] = *q
	return nil
}

func TestProvider_PriceStoresLiveQuotes(t *testing.T) {
	fetcher := &stubFetcher{prices: map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(190)}}
	store := &memStore{quotes: map[string]models.Quote{}}
	p := NewProvider(fetcher, nil, store, decimal.Zero, zerolog.Nop())

	price, err := p.Price(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(190).Equal(price))
	assert.True(t, decimal.NewFromInt(190).Equal(store.quotes["AAPL"].Price))
}

func TestProvider_PriceFallsBackToStore(t *testing.T) {
	fetcher := &stubFetcher{prices: map[string]decimal.Decimal{}}
	store := &memStore{quotes: map[string]models.Quote{
		"AAPL": {Ticker: "AAPL", Price: decimal.NewFromInt(185), FetchedAt: time.Now().Add(-time.Hour)},
	}}
	p := NewProvider(fetcher, nil, store, decimal.Zero, zerolog.Nop())

	price, err := p.Price(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(185).Equal(price))

	_, err = p.Price(context.Background(), "TSLA")
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "TSLA", ferr.Ticker)
}

func TestProvider_FXRate(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		fetcher := &stubFetcher{prices: map[string]decimal.Decimal{models.FXTicker: decimal.NewFromInt(1390)}}
		p := NewProvider(fetcher, nil, nil, decimal.Zero, zerolog.Nop())
		assert.True(t, decimal.NewFromInt(1390).Equal(p.FXRate(context.Background())))
	})

	t.Run("stored", func(t *testing.T) {
		store := &memStore{quotes: map[string]models.Quote{
			models.FXTicker: {Ticker: models.FXTicker, Price: decimal.NewFromInt(1410)},
		}}
		p := NewProvider(&stubFetcher{}, nil, store, decimal.Zero, zerolog.Nop())
		assert.True(t, decimal.NewFromInt(1410).Equal(p.FXRate(context.Background())))
	})

	t.Run("default", func(t *testing.T) {
		p := NewProvider(&stubFetcher{}, nil, nil, decimal.Zero, zerolog.Nop())
		assert.True(t, DefaultFXRate.Equal(p.FXRate(context.Background())))

		p = NewProvider(&stubFetcher{}, nil, nil, decimal.NewFromInt(1300), zerolog.Nop())
		assert.True(t, decimal.NewFromInt(1300).Equal(p.FXRate(context.Background())))
	})
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(nil, "test", time.Minute)
	assert.False(t, cache.Enabled())

	q, found, err := cache.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, q)

	assert.NoError(t, cache.Set(context.Background(), &models.Quote{Ticker: "AAPL"}))
	assert.Equal(t, "test:quote:AAPL", cache.Key("AAPL"))
}
