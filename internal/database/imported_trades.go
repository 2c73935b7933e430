package database

import (
	"fmt"
	"time"
)

// ImportedTradeExists checks if a brokerage order from source has already
// been imported
func (db *DB) ImportedTradeExists(source, orderID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM imported_trades WHERE source = $1 AND order_id = $2)`
	var exists bool
	if err := db.conn.QueryRow(query, source, orderID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check imported trade existence: %w", err)
	}
	return exists, nil
}

// RecordImportedTrade links a brokerage order to the trade it produced
func (db *DB) RecordImportedTrade(userID, source, orderID, ticker, tradeID string) error {
	query := `
		INSERT INTO imported_trades (source, order_id, user_id, ticker, trade_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source, order_id) DO NOTHING
	`
	if _, err := db.conn.Exec(query, source, orderID, userID, ticker, tradeID, time.Now()); err != nil {
		return fmt.Errorf("failed to record imported trade: %w", err)
	}
	return nil
}
