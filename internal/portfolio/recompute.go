package portfolio

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
	"github.com/trogers1052/portfolio-tracker/internal/valuation"
)

// revalue recomputes the holding's derived fields. When snapshotID names a
// sell, its cost basis snapshot is retaken from the sequential pass; every
// other sell keeps the snapshot it was saved with.
func (s *Service) revalue(h *models.Holding, price, fx decimal.Decimal, snapshotID string) {
	idx := -1
	if snapshotID != "" {
		idx = h.FindTrade(snapshotID)
	}
	if idx >= 0 {
		h.Trades[idx].AvgBuyPrice = decimal.Zero
	}
	result := valuation.ValueHolding(h, price, fx)
	if idx >= 0 && h.Trades[idx].IsSell() {
		h.Trades[idx].AvgBuyPrice = result.SellAvgPrices[snapshotID].Round(2)
	}
	result.ApplyTo(h, price)
}

// recompute revalues every holding of the user at the given rate, allocates
// weights across holdings and cash, and persists the result. prices overrides
// the stored current price per ticker.
func (s *Service) recompute(ctx context.Context, userID string, fx decimal.Decimal, prices map[string]decimal.Decimal) error {
	holdings, err := s.repo.ListHoldings(userID)
	if err != nil {
		return storeErr("list holdings", err)
	}
	cash, err := s.loadCash(userID)
	if err != nil {
		return err
	}

	for _, h := range holdings {
		price := h.CurrentPrice
		if p, ok := prices[h.Ticker]; ok {
			price = p
		}
		valuation.ValueHolding(h, price, fx).ApplyTo(h, price)
	}
	valuation.Allocate(holdings, cash, fx).Apply(holdings, cash)

	now := s.now()
	for _, h := range holdings {
		if err := s.repo.PutHolding(userID, h); err != nil {
			return storeErr("save holding", err)
		}
	}
	for _, c := range cash {
		c.UpdatedAt = now
		if err := s.repo.PutCash(userID, c); err != nil {
			return storeErr("save cash", err)
		}
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("holdings", len(holdings)).
		Str("fx_rate", fx.String()).
		Msg("Portfolio recomputed")
	return nil
}

// RecalculateWeights revalues all holdings at their stored prices and the
// current FX rate and rewrites every weight.
func (s *Service) RecalculateWeights(ctx context.Context, userID string) error {
	if err := s.recompute(ctx, userID, s.quotes.FXRate(ctx), nil); err != nil {
		return err
	}
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventWeightsRecomputed, UserID: userID})
	return nil
}

// RefreshQuotes fetches a current price for every holding, keeping the last
// known price for tickers whose quote fails, then recomputes the portfolio.
func (s *Service) RefreshQuotes(ctx context.Context, userID string) error {
	holdings, err := s.repo.ListHoldings(userID)
	if err != nil {
		return storeErr("list holdings", err)
	}
	fx := s.quotes.FXRate(ctx)

	prices := make(map[string]decimal.Decimal, len(holdings))
	for _, h := range holdings {
		if err := ctx.Err(); err != nil {
			return err
		}
		prices[h.Ticker] = s.currentPrice(ctx, h)
	}

	if err := s.recompute(ctx, userID, fx, prices); err != nil {
		return err
	}
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventWeightsRecomputed, UserID: userID})
	return nil
}

// RefreshAll refreshes quotes for every user with stored data. A failure for
// one user is logged and does not stop the others.
func (s *Service) RefreshAll(ctx context.Context) error {
	users, err := s.repo.ListUserIDs()
	if err != nil {
		return storeErr("list users", err)
	}
	failed := 0
	for _, userID := range users {
		if err := s.RefreshQuotes(ctx, userID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to refresh portfolio")
		}
	}
	s.logger.Info().Int("users", len(users)).Int("failed", failed).Msg("Quote refresh complete")
	return nil
}

// Summary returns portfolio-level totals and breakdowns from the stored
// derived fields.
func (s *Service) Summary(ctx context.Context, userID string) (*valuation.Summary, error) {
	holdings, err := s.repo.ListHoldings(userID)
	if err != nil {
		return nil, storeErr("list holdings", err)
	}
	cash, err := s.loadCash(userID)
	if err != nil {
		return nil, err
	}
	summary := valuation.Summarize(holdings, cash, s.quotes.FXRate(ctx), s.now())
	return &summary, nil
}
