package models

import "time"

// Portfolio event type constants
const (
	EventHoldingAdded      = "HOLDING_ADDED"
	EventHoldingUpdated    = "HOLDING_UPDATED"
	EventHoldingRemoved    = "HOLDING_REMOVED"
	EventTradeAdded        = "TRADE_ADDED"
	EventTradeUpdated      = "TRADE_UPDATED"
	EventTradeDeleted      = "TRADE_DELETED"
	EventCashUpdated       = "CASH_UPDATED"
	EventWeightsRecomputed = "WEIGHTS_RECOMPUTED"
	EventTradeDetected     = "TRADE_DETECTED"
)

// PortfolioEvent is published to Kafka after every successful mutation
type PortfolioEvent struct {
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id"`
	Ticker    string            `json:"ticker,omitempty"`
	Trade     *Trade            `json:"trade,omitempty"`
	Cash      *CashHistoryEntry `json:"cash,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// TradeEvent is a brokerage fill consumed from Kafka and imported as a trade
type TradeEvent struct {
	EventType string         `json:"event_type"`
	Source    string         `json:"source"`
	UserID    string         `json:"user_id"`
	Timestamp string         `json:"timestamp"`
	Data      TradeEventData `json:"data"`
}

// TradeEventData carries the raw string fields of a brokerage fill
type TradeEventData struct {
	OrderID      string  `json:"order_id"`
	Symbol       string  `json:"symbol"`
	Side         string  `json:"side"`
	Quantity     string  `json:"quantity"`
	AveragePrice string  `json:"average_price"`
	ExecutedAt   *string `json:"executed_at,omitempty"`
	Memo         string  `json:"memo,omitempty"`
}
