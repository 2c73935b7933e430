// Package portfolio implements the tracker's use cases: holding and trade
// bookkeeping, cash movements, memos and the recompute that keeps derived
// metrics and weights in sync after every change.
package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// Repository is the per-user record store the service reads and writes.
// Lookups of missing records return an error wrapping models.ErrNotFound.
type Repository interface {
	GetHolding(userID, ticker string) (*models.Holding, error)
	ListHoldings(userID string) ([]*models.Holding, error)
	PutHolding(userID string, h *models.Holding) error
	DeleteHolding(userID, ticker string) error

	ListCash(userID string) ([]*models.CashPosition, error)
	PutCash(userID string, c *models.CashPosition) error
	AppendCashHistory(userID string, e *models.CashHistoryEntry) error
	ListCashHistory(userID, yearMonth string) ([]*models.CashHistoryEntry, error)

	ListMemos(userID string) ([]*models.Memo, error)
	GetMemo(userID, id string) (*models.Memo, error)
	PutMemo(userID string, m *models.Memo) error
	DeleteMemo(userID, id string) error

	ImportedTradeExists(source, orderID string) (bool, error)
	RecordImportedTrade(userID, source, orderID, ticker, tradeID string) error

	ListUserIDs() ([]string, error)
}

// QuoteSource supplies current prices. FXRate never fails; it falls back to
// the last known or configured default rate.
type QuoteSource interface {
	Price(ctx context.Context, ticker string) (decimal.Decimal, error)
	FXRate(ctx context.Context) decimal.Decimal
}

// NameLookup resolves a ticker to its company name
type NameLookup interface {
	CompanyName(ticker string) (string, bool)
}

// Publisher emits portfolio change events
type Publisher interface {
	PublishPortfolioEvent(ctx context.Context, event models.PortfolioEvent) error
}

// Notifier is told when a user's portfolio has been recomputed
type Notifier interface {
	PortfolioChanged(userID string)
}

// Service coordinates validation, valuation and persistence
type Service struct {
	repo      Repository
	quotes    QuoteSource
	names     NameLookup
	publisher Publisher
	notifier  Notifier
	logger    zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates a portfolio service. names and publisher may be nil.
func NewService(repo Repository, quotes QuoteSource, names NameLookup, publisher Publisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		quotes:    quotes,
		names:     names,
		publisher: publisher,
		logger:    logger.With().Str("component", "portfolio").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

// SetNotifier registers a listener for recompute notifications
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// loadCash returns the KRW and USD positions, filling in empty ones
func (s *Service) loadCash(userID string) ([]*models.CashPosition, error) {
	stored, err := s.repo.ListCash(userID)
	if err != nil {
		return nil, storeErr("list cash", err)
	}
	byCurrency := make(map[string]*models.CashPosition, len(stored))
	for _, c := range stored {
		byCurrency[c.Currency] = c
	}
	cash := make([]*models.CashPosition, 0, 2)
	for _, cur := range []string{models.CurrencyKRW, models.CurrencyUSD} {
		c, ok := byCurrency[cur]
		if !ok {
			c = &models.CashPosition{Currency: cur, Amount: decimal.Zero}
		}
		cash = append(cash, c)
	}
	return cash, nil
}

func cashFor(cash []*models.CashPosition, currency string) *models.CashPosition {
	for _, c := range cash {
		if c.Currency == currency {
			return c
		}
	}
	return nil
}

// emit publishes an event and notifies listeners. Failures are logged only;
// the mutation has already been persisted.
func (s *Service) emit(ctx context.Context, event models.PortfolioEvent) {
	event.Timestamp = s.now()
	if s.publisher != nil {
		if err := s.publisher.PublishPortfolioEvent(ctx, event); err != nil {
			s.logger.Warn().Err(err).
				Str("event_type", event.EventType).
				Str("user_id", event.UserID).
				Msg("Failed to publish portfolio event")
		}
	}
	if s.notifier != nil {
		s.notifier.PortfolioChanged(event.UserID)
	}
}
