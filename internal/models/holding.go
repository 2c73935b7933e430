package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Volatility bucket constants. An empty value means the user has not picked one.
const (
	VolatilityUnset    = ""
	VolatilityVolatile = "volatile"
	VolatilityNeutral  = "neutral"
	VolatilityStable   = "stable"
)

// Holding is a tracked instrument with its full trade history and the
// derived metrics written back after every recompute.
type Holding struct {
	Ticker       string          `json:"ticker"`
	CompanyName  string          `json:"company_name"`
	Sector       string          `json:"sector"`
	Category     string          `json:"category"`
	Volatility   string          `json:"volatility,omitempty"`
	Trades       []Trade         `json:"trades"`
	CurrentPrice decimal.Decimal `json:"current_price"`

	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	AvgPrice        decimal.Decimal `json:"avg_price"`
	Profit          decimal.Decimal `json:"profit"`
	ProfitRate      decimal.Decimal `json:"profit_rate"`
	ValueInKRW      decimal.Decimal `json:"value_in_krw"`
	Weight          decimal.Decimal `json:"weight"`
	RealizedProfit  decimal.Decimal `json:"realized_profit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Currency returns the currency the holding's instrument is quoted in
func (h *Holding) Currency() string {
	return CurrencyForTicker(h.Ticker)
}

// IsHeld reports whether the holding currently contributes to valuation totals
func (h *Holding) IsHeld() bool {
	return len(h.Trades) > 0 && h.CurrentQuantity.IsPositive()
}

// FindTrade returns the index of the trade with the given ID, or -1
func (h *Holding) FindTrade(id string) int {
	for i := range h.Trades {
		if h.Trades[i].ID == id {
			return i
		}
	}
	return -1
}

// ValidVolatility reports whether v is an accepted volatility bucket
func ValidVolatility(v string) bool {
	switch v {
	case VolatilityUnset, VolatilityVolatile, VolatilityNeutral, VolatilityStable:
		return true
	}
	return false
}
