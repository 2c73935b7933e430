package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// memRepo is an in-memory Repository that stores copies, like a real database
type memRepo struct {
	mu       sync.Mutex
	holdings map[string]map[string]models.Holding
	cash     map[string]map[string]models.CashPosition
	history  map[string][]models.CashHistoryEntry
	memos    map[string]map[string]models.Memo
	imported map[string]string
	failPut  error
}

func newMemRepo() *memRepo {
	return &memRepo{
		holdings: make(map[string]map[string]models.Holding),
		cash:     make(map[string]map[string]models.CashPosition),
		history:  make(map[string][]models.CashHistoryEntry),
		memos:    make(map[string]map[string]models.Memo),
		imported: make(map[string]string),
	}
}

func copyHolding(h models.Holding) *models.Holding {
	h.Trades = append([]models.Trade{}, h.Trades...)
	return &h
}

func (r *memRepo) GetHolding(userID, ticker string) (*models.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holdings[userID][ticker]
	if !ok {
		return nil, fmt.Errorf("holding %s: %w", ticker, models.ErrNotFound)
	}
	return copyHolding(h), nil
}

func (r *memRepo) ListHoldings(userID string) ([]*models.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Holding
	for _, h := range r.holdings[userID] {
		out = append(out, copyHolding(h))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

func (r *memRepo) PutHolding(userID string, h *models.Holding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPut != nil {
		return r.failPut
	}
	if r.holdings[userID] == nil {
		r.holdings[userID] = make(map[string]models.Holding)
	}
	r.holdings[userID][h.Ticker] = *copyHolding(*h)
	return nil
}

func (r *memRepo) DeleteHolding(userID, ticker string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.holdings[userID], ticker)
	return nil
}

func (r *memRepo) ListCash(userID string) ([]*models.CashPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CashPosition
	for _, c := range r.cash[userID] {
		c := c
		out = append(out, &c)
	}
	return out, nil
}

func (r *memRepo) PutCash(userID string, c *models.CashPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cash[userID] == nil {
		r.cash[userID] = make(map[string]models.CashPosition)
	}
	r.cash[userID][c.Currency] = *c
	return nil
}

func (r *memRepo) AppendCashHistory(userID string, e *models.CashHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = len(r.history[userID]) + 1
	r.history[userID] = append(r.history[userID], *e)
	return nil
}

func (r *memRepo) ListCashHistory(userID, yearMonth string) ([]*models.CashHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CashHistoryEntry
	entries := r.history[userID]
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if yearMonth == "" || e.YearMonth() == yearMonth {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *memRepo) ListMemos(userID string) ([]*models.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Memo
	for _, m := range r.memos[userID] {
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *memRepo) GetMemo(userID, id string) (*models.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memos[userID][id]
	if !ok {
		return nil, fmt.Errorf("memo %s: %w", id, models.ErrNotFound)
	}
	return &m, nil
}

func (r *memRepo) PutMemo(userID string, m *models.Memo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.memos[userID] == nil {
		r.memos[userID] = make(map[string]models.Memo)
	}
	r.memos[userID][m.ID] = *m
	return nil
}

func (r *memRepo) DeleteMemo(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memos[userID], id)
	return nil
}

func (r *memRepo) ImportedTradeExists(source, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.imported[source+"/"+orderID]
	return ok, nil
}

func (r *memRepo) RecordImportedTrade(userID, source, orderID, ticker, tradeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.imported[source+"/"+orderID] = tradeID
	return nil
}

func (r *memRepo) ListUserIDs() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	for id := range r.holdings {
		seen[id] = true
	}
	for id := range r.cash {
		seen[id] = true
	}
	var out []string
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

var errQuoteUnavailable = errors.New("quote unavailable")

type stubQuotes struct {
	prices map[string]decimal.Decimal
	fx     decimal.Decimal
}

func (q *stubQuotes) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	p, ok := q.prices[ticker]
	if !ok {
		return decimal.Zero, errQuoteUnavailable
	}
	return p, nil
}

func (q *stubQuotes) FXRate(ctx context.Context) decimal.Decimal { return q.fx }

type stubNames map[string]string

func (n stubNames) CompanyName(ticker string) (string, bool) {
	name, ok := n[ticker]
	return name, ok
}

type recordingPublisher struct {
	events []models.PortfolioEvent
	err    error
}

func (p *recordingPublisher) PublishPortfolioEvent(ctx context.Context, event models.PortfolioEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	var out []string
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type countingNotifier struct {
	calls map[string]int
}

func (n *countingNotifier) PortfolioChanged(userID string) {
	n.calls[userID]++
}

type fixture struct {
	svc       *Service
	repo      *memRepo
	quotes    *stubQuotes
	publisher *recordingPublisher
	notifier  *countingNotifier
}

const testUser = "user-1"

func newFixture() *fixture {
	repo := newMemRepo()
	quotes := &stubQuotes{prices: map[string]decimal.Decimal{}, fx: decimal.NewFromInt(1000)}
	publisher := &recordingPublisher{}
	notifier := &countingNotifier{calls: map[string]int{}}

	svc := NewService(repo, quotes, stubNames{"005930": "Samsung Electronics", "AAPL": "Apple Inc."}, publisher, zerolog.Nop())
	svc.SetNotifier(notifier)
	svc.now = func() time.Time { return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return &fixture{svc: svc, repo: repo, quotes: quotes, publisher: publisher, notifier: notifier}
}
