package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade type constants
const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// DateLayout is the calendar-date format used for trades, cash entries and memos
const DateLayout = "2006-01-02"

// Trade represents a single buy or sell of a holding's instrument.
// Price is in the instrument's native currency. AvgBuyPrice is only set on
// sells and holds the running average cost at the moment of the sale.
type Trade struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Memo        string          `json:"memo,omitempty"`
	AvgBuyPrice decimal.Decimal `json:"avg_buy_price,omitzero"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsBuy reports whether the trade adds to the position
func (t Trade) IsBuy() bool { return t.Type == TradeTypeBuy }

// IsSell reports whether the trade reduces the position
func (t Trade) IsSell() bool { return t.Type == TradeTypeSell }

// Amount returns price * quantity in the instrument's native currency
func (t Trade) Amount() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}
