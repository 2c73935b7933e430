package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FXTicker is the provider symbol for the USD/KRW exchange rate
const FXTicker = "KRW=X"

// Quote is the last known price for a ticker in its native currency
type Quote struct {
	Ticker    string          `json:"ticker"`
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}
