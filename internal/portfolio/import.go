package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// ImportTrade books a brokerage fill as a trade. Fills already imported are
// skipped and return a nil trade. Holdings that do not exist yet are created
// unclassified, and only once the fill has been accepted.
func (s *Service) ImportTrade(ctx context.Context, event models.TradeEvent) (*models.Trade, error) {
	data := event.Data
	if event.UserID == "" {
		return nil, &ValidationError{Field: "user_id", Message: "is required"}
	}
	if data.OrderID == "" {
		return nil, &ValidationError{Field: "order_id", Message: "is required"}
	}

	exists, err := s.repo.ImportedTradeExists(event.Source, data.OrderID)
	if err != nil {
		return nil, storeErr("check imported trade", err)
	}
	if exists {
		s.logger.Debug().Str("order_id", data.OrderID).Msg("Trade already imported, skipping")
		return nil, nil
	}

	ticker := NormalizeTicker(data.Symbol)
	if ticker == "" {
		return nil, &ValidationError{Field: "symbol", Message: "is required"}
	}
	executed, err := executedDate(event)
	if err != nil {
		return nil, err
	}
	memo := data.Memo
	if memo == "" {
		memo = fmt.Sprintf("imported from %s order %s", event.Source, data.OrderID)
	}
	in := TradeInput{
		Date:     executed.Format(models.DateLayout),
		Type:     strings.ToLower(data.Side),
		Price:    NumericString(data.AveragePrice),
		Quantity: NumericString(data.Quantity),
		Memo:     memo,
	}

	trade, err := ParseTrade(in)
	if err != nil {
		return nil, err
	}
	h, created, err := s.importTarget(event.UserID, ticker)
	if err != nil {
		return nil, err
	}
	saved, err := s.bookTrade(ctx, event.UserID, h, trade, created)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RecordImportedTrade(event.UserID, event.Source, data.OrderID, ticker, saved.ID); err != nil {
		return nil, storeErr("record imported trade", err)
	}
	return saved, nil
}

// importTarget returns the stored holding for ticker, or a new unclassified
// one that has not been saved yet.
func (s *Service) importTarget(userID, ticker string) (*models.Holding, bool, error) {
	h, err := s.repo.GetHolding(userID, ticker)
	if err == nil {
		return h, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, storeErr("get holding", err)
	}

	now := s.now()
	h = &models.Holding{
		Ticker:      ticker,
		CompanyName: ticker,
		Trades:      []models.Trade{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.names != nil {
		if name, ok := s.names.CompanyName(ticker); ok {
			h.CompanyName = name
		}
	}
	return h, true, nil
}

// executedDate prefers the fill's execution time and falls back to the event
// timestamp.
func executedDate(event models.TradeEvent) (time.Time, error) {
	raw := event.Timestamp
	if event.Data.ExecutedAt != nil && *event.Data.ExecutedAt != "" {
		raw = *event.Data.ExecutedAt
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, models.DateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{Field: "executed_at", Message: "must be an RFC3339 timestamp"}
}
