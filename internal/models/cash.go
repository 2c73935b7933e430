package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency constants
const (
	CurrencyKRW = "KRW"
	CurrencyUSD = "USD"
)

// Cash history entry type constants
const (
	CashTypeDeposit   = "deposit"
	CashTypeWithdraw  = "withdraw"
	CashTypeStockBuy  = "stock_buy"
	CashTypeStockSell = "stock_sell"
)

// CashPosition is the balance held in a single currency
type CashPosition struct {
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
	ValueInKRW decimal.Decimal `json:"value_in_krw"`
	Weight     decimal.Decimal `json:"weight"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CashHistoryEntry is one line of the append-only cash ledger.
// Amount is signed: positive for inflows, negative for outflows.
type CashHistoryEntry struct {
	ID          int             `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// YearMonth returns the ledger bucket key for the entry
func (e *CashHistoryEntry) YearMonth() string {
	return YearMonth(e.Date)
}

// YearMonth formats a date as the YYYY-MM ledger key
func YearMonth(t time.Time) string {
	return t.Format("2006-01")
}

// IsKoreanTicker reports whether a ticker is a pure numeric Korean market code
func IsKoreanTicker(ticker string) bool {
	if ticker == "" {
		return false
	}
	for _, r := range ticker {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ChartSymbol returns the symbol charting sites list the ticker under. Korean
// tickers get the .KS market suffix.
func ChartSymbol(ticker string) string {
	if IsKoreanTicker(ticker) {
		return ticker + ".KS"
	}
	return ticker
}

// CurrencyForTicker returns KRW for Korean tickers and USD for everything else
func CurrencyForTicker(ticker string) string {
	if IsKoreanTicker(ticker) {
		return CurrencyKRW
	}
	return CurrencyUSD
}

// ValidCurrency reports whether c is a supported cash currency
func ValidCurrency(c string) bool {
	return c == CurrencyKRW || c == CurrencyUSD
}
