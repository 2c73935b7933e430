package database

import (
	"database/sql"
	"fmt"

	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// SaveQuote stores the latest price for a ticker, replacing the previous one
func (db *DB) SaveQuote(q *models.Quote) error {
	query := `
		INSERT INTO quotes (ticker, price, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker) DO UPDATE SET
			price = EXCLUDED.price,
			fetched_at = EXCLUDED.fetched_at
	`
	if _, err := db.conn.Exec(query, q.Ticker, q.Price, q.FetchedAt); err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

// GetQuote retrieves the last stored price for a ticker
func (db *DB) GetQuote(ticker string) (*models.Quote, error) {
	var q models.Quote
	err := db.conn.QueryRow(
		`SELECT ticker, price, fetched_at FROM quotes WHERE ticker = $1`, ticker,
	).Scan(&q.Ticker, &q.Price, &q.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quote not found: %s: %w", ticker, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &q, nil
}
