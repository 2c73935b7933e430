package portfolio

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// ListHoldings returns every holding of the user
func (s *Service) ListHoldings(userID string) ([]*models.Holding, error) {
	holdings, err := s.repo.ListHoldings(userID)
	if err != nil {
		return nil, storeErr("list holdings", err)
	}
	return holdings, nil
}

// GetHolding returns a single holding
func (s *Service) GetHolding(userID, ticker string) (*models.Holding, error) {
	h, err := s.repo.GetHolding(userID, NormalizeTicker(ticker))
	if err != nil {
		return nil, storeErr("get holding", err)
	}
	return h, nil
}

// AddHolding registers a new ticker with no trades
func (s *Service) AddHolding(ctx context.Context, userID string, in HoldingInput) (*models.Holding, error) {
	h, err := ParseHolding(in)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.GetHolding(userID, h.Ticker)
	switch {
	case err == nil:
		return nil, &ValidationError{Field: "ticker", Message: "holding already exists"}
	case !IsNotFound(err):
		return nil, storeErr("get holding", err)
	}

	h.CompanyName = h.Ticker
	if s.names != nil {
		if name, ok := s.names.CompanyName(h.Ticker); ok {
			h.CompanyName = name
		}
	}
	now := s.now()
	h.CreatedAt = now
	h.UpdatedAt = now
	h.CurrentPrice = s.currentPrice(ctx, &h)

	if err := s.repo.PutHolding(userID, &h); err != nil {
		return nil, storeErr("save holding", err)
	}
	if err := s.recompute(ctx, userID, s.quotes.FXRate(ctx), nil); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Str("ticker", h.Ticker).Msg("Holding added")
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventHoldingAdded, UserID: userID, Ticker: h.Ticker})
	return s.GetHolding(userID, h.Ticker)
}

// UpdateHolding changes a holding's descriptive fields. Trades and derived
// metrics are untouched.
func (s *Service) UpdateHolding(ctx context.Context, userID, ticker string, in HoldingUpdate) (*models.Holding, error) {
	h, err := s.GetHolding(userID, ticker)
	if err != nil {
		return nil, err
	}
	if in.CompanyName != nil {
		if name := strings.TrimSpace(*in.CompanyName); name != "" {
			h.CompanyName = name
		}
	}
	if in.Sector != nil {
		sector := strings.TrimSpace(*in.Sector)
		if sector == "" {
			return nil, &ValidationError{Field: "sector", Message: "is required"}
		}
		h.Sector = sector
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return nil, &ValidationError{Field: "category", Message: "is required"}
		}
		h.Category = category
	}
	if in.Volatility != nil {
		v, err := parseVolatility(*in.Volatility)
		if err != nil {
			return nil, err
		}
		h.Volatility = v
	}
	h.UpdatedAt = s.now()

	if err := s.repo.PutHolding(userID, h); err != nil {
		return nil, storeErr("save holding", err)
	}
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventHoldingUpdated, UserID: userID, Ticker: h.Ticker})
	return h, nil
}

// DeleteHolding removes a holding with all its trades and recomputes weights.
// Cash booked by its trades stays in the ledger.
func (s *Service) DeleteHolding(ctx context.Context, userID, ticker string) error {
	h, err := s.GetHolding(userID, ticker)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteHolding(userID, h.Ticker); err != nil {
		return storeErr("delete holding", err)
	}
	if err := s.recompute(ctx, userID, s.quotes.FXRate(ctx), nil); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Str("ticker", h.Ticker).Msg("Holding removed")
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventHoldingRemoved, UserID: userID, Ticker: h.Ticker})
	return nil
}

// currentPrice fetches a live price for the holding, keeping the stored one
// when the quote source fails.
func (s *Service) currentPrice(ctx context.Context, h *models.Holding) decimal.Decimal {
	price, err := s.quotes.Price(ctx, h.Ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", h.Ticker).Msg("Quote unavailable, keeping last known price")
		return h.CurrentPrice
	}
	return price
}
