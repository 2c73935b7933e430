package portfolio

import (
	"context"
	"strings"

	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// GetCash returns the KRW and USD positions
func (s *Service) GetCash(userID string) ([]*models.CashPosition, error) {
	return s.loadCash(userID)
}

// CashHistory returns ledger entries, optionally restricted to one YYYY-MM
// month, newest first.
func (s *Service) CashHistory(userID, month string) ([]*models.CashHistoryEntry, error) {
	ym, err := ParseYearMonth(month)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListCashHistory(userID, ym)
	if err != nil {
		return nil, storeErr("list cash history", err)
	}
	return entries, nil
}

// Deposit adds cash in one currency
func (s *Service) Deposit(ctx context.Context, userID string, in CashInput) (*models.CashPosition, error) {
	return s.moveCash(ctx, userID, in, models.CashTypeDeposit)
}

// Withdraw removes cash in one currency. The balance may not go negative.
func (s *Service) Withdraw(ctx context.Context, userID string, in CashInput) (*models.CashPosition, error) {
	return s.moveCash(ctx, userID, in, models.CashTypeWithdraw)
}

func (s *Service) moveCash(ctx context.Context, userID string, in CashInput, typ string) (*models.CashPosition, error) {
	now := s.now()
	currency, amount, date, err := ParseCash(in, now)
	if err != nil {
		return nil, err
	}
	cash, err := s.loadCash(userID)
	if err != nil {
		return nil, err
	}
	position := cashFor(cash, currency)

	if typ == models.CashTypeWithdraw {
		if amount.GreaterThan(position.Amount) {
			return nil, &InsufficientFundsError{Currency: currency, Required: amount, Available: position.Amount}
		}
		amount = amount.Neg()
	}

	entry := &models.CashHistoryEntry{
		Date:        date,
		Amount:      amount,
		Currency:    currency,
		Type:        typ,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
	}
	if err := s.bookCash(userID, position, entry); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, userID, s.quotes.FXRate(ctx), nil); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("currency", currency).
		Str("type", typ).
		Str("amount", amount.String()).
		Msg("Cash updated")
	s.emit(ctx, models.PortfolioEvent{EventType: models.EventCashUpdated, UserID: userID, Cash: entry})

	cash, err = s.loadCash(userID)
	if err != nil {
		return nil, err
	}
	return cashFor(cash, currency), nil
}

// bookCash applies a signed ledger entry to the position and persists both
func (s *Service) bookCash(userID string, position *models.CashPosition, entry *models.CashHistoryEntry) error {
	position.Amount = position.Amount.Add(entry.Amount)
	position.UpdatedAt = entry.CreatedAt
	if err := s.repo.PutCash(userID, position); err != nil {
		return storeErr("save cash", err)
	}
	if err := s.repo.AppendCashHistory(userID, entry); err != nil {
		return storeErr("append cash history", err)
	}
	return nil
}
