package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trogers1052/portfolio-tracker/internal/models"
)

const holdingColumns = `
	ticker, company_name, sector, category, volatility, trades, current_price,
	current_quantity, avg_price, profit, profit_rate, value_in_krw, weight,
	realized_profit, created_at, updated_at
`

// GetHolding retrieves a single holding with its trades
func (db *DB) GetHolding(userID, ticker string) (*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND ticker = $2`

	h, err := scanHolding(db.conn.QueryRow(query, userID, ticker))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("holding not found: %s: %w", ticker, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return h, nil
}

// ListHoldings retrieves every holding of a user ordered by ticker
func (db *DB) ListHoldings(userID string) ([]*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 ORDER BY ticker`

	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}
	return holdings, nil
}

// PutHolding inserts or fully rewrites a holding, trades included
func (db *DB) PutHolding(userID string, h *models.Holding) error {
	trades := h.Trades
	if trades == nil {
		trades = []models.Trade{}
	}
	tradesJSON, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("failed to marshal trades: %w", err)
	}

	now := time.Now()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	if h.UpdatedAt.IsZero() {
		h.UpdatedAt = now
	}

	query := `
		INSERT INTO holdings (
			user_id, ticker, company_name, sector, category, volatility, trades,
			current_price, current_quantity, avg_price, profit, profit_rate,
			value_in_krw, weight, realized_profit, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (user_id, ticker) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			sector = EXCLUDED.sector,
			category = EXCLUDED.category,
			volatility = EXCLUDED.volatility,
			trades = EXCLUDED.trades,
			current_price = EXCLUDED.current_price,
			current_quantity = EXCLUDED.current_quantity,
			avg_price = EXCLUDED.avg_price,
			profit = EXCLUDED.profit,
			profit_rate = EXCLUDED.profit_rate,
			value_in_krw = EXCLUDED.value_in_krw,
			weight = EXCLUDED.weight,
			realized_profit = EXCLUDED.realized_profit,
			updated_at = EXCLUDED.updated_at
	`
	_, err = db.conn.Exec(query,
		userID, h.Ticker, h.CompanyName, h.Sector, h.Category, h.Volatility, string(tradesJSON),
		h.CurrentPrice, h.CurrentQuantity, h.AvgPrice, h.Profit, h.ProfitRate,
		h.ValueInKRW, h.Weight, h.RealizedProfit, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}
	return nil
}

// DeleteHolding removes a holding and its trades
func (db *DB) DeleteHolding(userID, ticker string) error {
	result, err := db.conn.Exec(`DELETE FROM holdings WHERE user_id = $1 AND ticker = $2`, userID, ticker)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("holding not found: %s: %w", ticker, models.ErrNotFound)
	}
	return nil
}

// ListUserIDs returns every user that owns a holding or a cash position
func (db *DB) ListUserIDs() ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT user_id FROM holdings
		UNION
		SELECT user_id FROM cash_positions
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHolding(row rowScanner) (*models.Holding, error) {
	var h models.Holding
	var tradesJSON []byte

	err := row.Scan(
		&h.Ticker, &h.CompanyName, &h.Sector, &h.Category, &h.Volatility, &tradesJSON, &h.CurrentPrice,
		&h.CurrentQuantity, &h.AvgPrice, &h.Profit, &h.ProfitRate, &h.ValueInKRW, &h.Weight,
		&h.RealizedProfit, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.Trades = []models.Trade{}
	if len(tradesJSON) > 0 {
		if err := json.Unmarshal(tradesJSON, &h.Trades); err != nil {
			return nil, fmt.Errorf("failed to decode trades for %s: %w", h.Ticker, err)
		}
	}
	return &h, nil
}
