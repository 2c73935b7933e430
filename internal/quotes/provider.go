package quotes

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// DefaultFXRate is the USD/KRW rate used when no live or stored rate exists
var DefaultFXRate = decimal.NewFromInt(1450)

// Fetcher fetches a live price
type Fetcher interface {
	Fetch(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// Store persists last-known quotes
type Store interface {
	GetQuote(ticker string) (*models.Quote, error)
	SaveQuote(q *models.Quote) error
}

// Provider resolves prices from the live API, then the Redis cache, then
// the quote store.
type Provider struct {
	fetcher   Fetcher
	cache     *Cache
	store     Store
	defaultFX decimal.Decimal
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProvider creates a Provider. cache and store may be nil.
func NewProvider(fetcher Fetcher, cache *Cache, store Store, defaultFX decimal.Decimal, logger zerolog.Logger) *Provider {
	if !defaultFX.IsPositive() {
		defaultFX = DefaultFXRate
	}
	return &Provider{
		fetcher:   fetcher,
		cache:     cache,
		store:     store,
		defaultFX: defaultFX,
		logger:    logger.With().Str("component", "quotes").Logger(),
		now:       time.Now,
	}
}

// Price returns the current price of ticker. When the live lookup fails it
// returns the last known value; the *FetchError is only returned when no
// value is known at all.
func (p *Provider) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	price, err := p.fetcher.Fetch(ctx, ticker)
	if err == nil {
		p.remember(ctx, &models.Quote{Ticker: ticker, Price: price, FetchedAt: p.now().UTC()})
		return price, nil
	}

	if q, ok := p.lastKnown(ctx, ticker); ok {
		p.logger.Warn().Err(err).
			Str("ticker", ticker).
			Str("price", q.Price.String()).
			Time("fetched_at", q.FetchedAt).
			Msg("Using last known quote")
		return q.Price, nil
	}
	return decimal.Zero, err
}

// FXRate returns the USD/KRW rate, falling back to the last known rate and
// finally to the configured default.
func (p *Provider) FXRate(ctx context.Context) decimal.Decimal {
	rate, err := p.Price(ctx, models.FXTicker)
	if err != nil {
		p.logger.Warn().Err(err).Str("default", p.defaultFX.String()).Msg("FX rate unavailable, using default")
		return p.defaultFX
	}
	return rate
}

func (p *Provider) remember(ctx context.Context, q *models.Quote) {
	if err := p.cache.Set(ctx, q); err != nil {
		p.logger.Warn().Err(err).Str("ticker", q.Ticker).Msg("Failed to cache quote")
	}
	if p.store != nil {
		if err := p.store.SaveQuote(q); err != nil {
			p.logger.Warn().Err(err).Str("ticker", q.Ticker).Msg("Failed to store quote")
		}
	}
}

func (p *Provider) lastKnown(ctx context.Context, ticker string) (*models.Quote, bool) {
	q, ok, err := p.cache.Get(ctx, ticker)
	if err != nil {
		p.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to read quote cache")
	}
	if ok {
		return q, true
	}

	if p.store == nil {
		return nil, false
	}
	q, err = p.store.GetQuote(ticker)
	if err != nil {
		return nil, false
	}
	// warm the cache for the next miss
	if err := p.cache.Set(ctx, q); err != nil {
		p.logger.Debug().Err(err).Str("ticker", ticker).Msg("Failed to warm quote cache")
	}
	return q, true
}
