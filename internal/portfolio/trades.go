package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
	"github.com/trogers1052/portfolio-tracker/internal/valuation"
)

// AddTrade validates and appends a trade to a holding, books its cash
// movement and recomputes the portfolio.
func (s *Service) AddTrade(ctx context.Context, userID, ticker string, in TradeInput) (*models.Trade, error) {
	trade, err := ParseTrade(in)
	if err != nil {
		return nil, err
	}
	h, err := s.GetHolding(userID, ticker)
	if err != nil {
		return nil, err
	}
	return s.bookTrade(ctx, userID, h, trade, false)
}

// bookTrade runs the cash and holdings checks for a parsed trade, then
// persists h with the trade appended. created marks a holding that is not
// stored yet; nothing is written for it until every check passes.
func (s *Service) bookTrade(ctx context.Context, userID string, h *models.Holding, trade models.Trade, created bool) (*models.Trade, error) {
	cash, err := s.loadCash(userID)
	if err != nil {
		return nil, err
	}

	currency := h.Currency()
	position := cashFor(cash, currency)
	if trade.IsBuy() && trade.Amount().GreaterThan(position.Amount) {
		return nil, &InsufficientFundsError{
			Currency:  currency,
			Required:  trade.Amount(),
			Available: position.Amount,
		}
	}

	now := s.now()
	trade.ID = s.newID()
	trade.CreatedAt = now

	trades := make([]models.Trade, 0, len(h.Trades)+1)
	trades = append(trades, h.Trades...)
	trades = append(trades, trade)
	if trade.IsSell() {
		if err := checkHoldings(h.Ticker, trades); err != nil {
			return nil, err
		}
	}
	h.Trades = trades

	fx := s.quotes.FXRate(ctx)
	price := s.currentPrice(ctx, h)
	s.revalue(h, price, fx, trade.ID)
	h.UpdatedAt = now
	if err := s.repo.PutHolding(userID, h); err != nil {
		return nil, storeErr("save holding", err)
	}
	saved := h.Trades[h.FindTrade(trade.ID)]

	entry := &models.CashHistoryEntry{
		Date:        saved.Date,
		Currency:    currency,
		Description: fmt.Sprintf("%s %s %s @ %s", strings.ToUpper(saved.Type), h.Ticker, saved.Quantity.String(), saved.Price.String()),
		CreatedAt:   now,
	}
	if saved.IsBuy() {
		entry.Amount = saved.Amount().Neg()
		entry.Type = models.CashTypeStockBuy
	} else {
		entry.Amount = saved.Amount()
		entry.Type = models.CashTypeStockSell
	}
	if err := s.bookCash(userID, position, entry); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, userID, fx, nil); err != nil {
		return nil, err
	}

	if created {
		s.logger.Info().Str("user_id", userID).Str("ticker", h.Ticker).Msg("Holding added")
		s.emit(ctx, models.PortfolioEvent{EventType: models.EventHoldingAdded, UserID: userID, Ticker: h.Ticker})
	}
	s.logger.Info().
		Str("user_id", userID).
		Str("ticker", h.Ticker).
		Str("trade_id", saved.ID).
		Str("type", saved.Type).
		Str("quantity", saved.Quantity.String()).
		Str("price", saved.Price.String()).
		Msg("Trade added")
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventTradeAdded, UserID: userID, Ticker: h.Ticker, Trade: &saved})
	return &saved, nil
}

// EditTrade replaces the date, side, price, quantity and memo of an existing
// trade. Cash booked when the trade was added is not re-booked, but an edit
// that raises the trade's buy cost beyond the available cash is rejected.
func (s *Service) EditTrade(ctx context.Context, userID, ticker, tradeID string, in TradeInput) (*models.Trade, error) {
	edited, err := ParseTrade(in)
	if err != nil {
		return nil, err
	}
	h, err := s.GetHolding(userID, ticker)
	if err != nil {
		return nil, err
	}
	idx := h.FindTrade(tradeID)
	if idx < 0 {
		return nil, fmt.Errorf("trade %s: %w", tradeID, models.ErrNotFound)
	}

	original := h.Trades[idx]
	edited.ID = original.ID
	edited.CreatedAt = original.CreatedAt

	if added := buyCost(edited).Sub(buyCost(original)); added.IsPositive() {
		cash, err := s.loadCash(userID)
		if err != nil {
			return nil, err
		}
		currency := h.Currency()
		position := cashFor(cash, currency)
		if added.GreaterThan(position.Amount) {
			return nil, &InsufficientFundsError{
				Currency:  currency,
				Required:  added,
				Available: position.Amount,
			}
		}
	}

	trades := make([]models.Trade, len(h.Trades))
	copy(trades, h.Trades)
	trades[idx] = edited
	if err := checkHoldings(h.Ticker, trades); err != nil {
		return nil, err
	}
	h.Trades = trades

	fx := s.quotes.FXRate(ctx)
	s.revalue(h, h.CurrentPrice, fx, edited.ID)
	h.UpdatedAt = s.now()
	if err := s.repo.PutHolding(userID, h); err != nil {
		return nil, storeErr("save holding", err)
	}
	if err := s.recompute(ctx, userID, fx, nil); err != nil {
		return nil, err
	}

	saved := h.Trades[idx]
	s.logger.Info().Str("user_id", userID).Str("ticker", h.Ticker).Str("trade_id", saved.ID).Msg("Trade updated")
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventTradeUpdated, UserID: userID, Ticker: h.Ticker, Trade: &saved})
	return &saved, nil
}

// UpdateTradeMemo changes only the memo of a trade
func (s *Service) UpdateTradeMemo(ctx context.Context, userID, ticker, tradeID, memo string) (*models.Trade, error) {
	h, err := s.GetHolding(userID, ticker)
	if err != nil {
		return nil, err
	}
	idx := h.FindTrade(tradeID)
	if idx < 0 {
		return nil, fmt.Errorf("trade %s: %w", tradeID, models.ErrNotFound)
	}
	h.Trades[idx].Memo = strings.TrimSpace(memo)
	h.UpdatedAt = s.now()
	if err := s.repo.PutHolding(userID, h); err != nil {
		return nil, storeErr("save holding", err)
	}

	saved := h.Trades[idx]
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventTradeUpdated, UserID: userID, Ticker: h.Ticker, Trade: &saved})
	return &saved, nil
}

// DeleteTrade removes a trade and recomputes the portfolio. Removing a buy
// that later sells depend on is rejected.
func (s *Service) DeleteTrade(ctx context.Context, userID, ticker, tradeID string) error {
	h, err := s.GetHolding(userID, ticker)
	if err != nil {
		return err
	}
	idx := h.FindTrade(tradeID)
	if idx < 0 {
		return fmt.Errorf("trade %s: %w", tradeID, models.ErrNotFound)
	}
	removed := h.Trades[idx]

	trades := make([]models.Trade, 0, len(h.Trades)-1)
	trades = append(trades, h.Trades[:idx]...)
	trades = append(trades, h.Trades[idx+1:]...)
	if err := checkHoldings(h.Ticker, trades); err != nil {
		return err
	}
	h.Trades = trades

	fx := s.quotes.FXRate(ctx)
	s.revalue(h, h.CurrentPrice, fx, "")
	h.UpdatedAt = s.now()
	if err := s.repo.PutHolding(userID, h); err != nil {
		return storeErr("save holding", err)
	}
	if err := s.recompute(ctx, userID, fx, nil); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Str("ticker", h.Ticker).Str("trade_id", tradeID).Msg("Trade deleted")
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventTradeDeleted, UserID: userID, Ticker: h.Ticker, Trade: &removed})
	return nil
}

func buyCost(t models.Trade) decimal.Decimal {
	if !t.IsBuy() {
		return decimal.Zero
	}
	return t.Amount()
}

func checkHoldings(ticker string, trades []models.Trade) error {
	if short := valuation.CheckHoldings(trades); short != nil {
		return &InsufficientHoldingsError{
			Ticker:    ticker,
			Requested: short.Requested,
			Available: short.Available,
		}
	}
	return nil
}
