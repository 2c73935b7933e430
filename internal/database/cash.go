package database

import (
	"database/sql"
	"fmt"

	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// ListCash retrieves the stored cash positions of a user
func (db *DB) ListCash(userID string) ([]*models.CashPosition, error) {
	query := `
		SELECT currency, amount, value_in_krw, weight, updated_at
		FROM cash_positions
		WHERE user_id = $1
		ORDER BY currency
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.CashPosition
	for rows.Next() {
		var c models.CashPosition
		if err := rows.Scan(&c.Currency, &c.Amount, &c.ValueInKRW, &c.Weight, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cash position: %w", err)
		}
		positions = append(positions, &c)
	}
	return positions, rows.Err()
}

// PutCash inserts or updates a cash position
func (db *DB) PutCash(userID string, c *models.CashPosition) error {
	query := `
		INSERT INTO cash_positions (user_id, currency, amount, value_in_krw, weight, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, currency) DO UPDATE SET
			amount = EXCLUDED.amount,
			value_in_krw = EXCLUDED.value_in_krw,
			weight = EXCLUDED.weight,
			updated_at = EXCLUDED.updated_at
	`
	_, err := db.conn.Exec(query, userID, c.Currency, c.Amount, c.ValueInKRW, c.Weight, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save cash position: %w", err)
	}
	return nil
}

// AppendCashHistory records a ledger entry. Entries are never updated.
func (db *DB) AppendCashHistory(userID string, e *models.CashHistoryEntry) error {
	query := `
		INSERT INTO cash_history (user_id, date, year_month, amount, currency, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		userID, e.Date, e.YearMonth(), e.Amount, e.Currency, e.Type, e.Description, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to append cash history: %w", err)
	}
	return nil
}

// ListCashHistory retrieves ledger entries newest first. An empty yearMonth
// returns every month.
func (db *DB) ListCashHistory(userID, yearMonth string) ([]*models.CashHistoryEntry, error) {
	query := `
		SELECT id, date, amount, currency, type, description, created_at
		FROM cash_history
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	if yearMonth != "" {
		query += ` AND year_month = $2`
		args = append(args, yearMonth)
	}
	query += ` ORDER BY date DESC, id DESC`

	return scanCashHistory(db.conn.Query(query, args...))
}

func scanCashHistory(rows *sql.Rows, err error) ([]*models.CashHistoryEntry, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query cash history: %w", err)
	}
	defer rows.Close()

	var entries []*models.CashHistoryEntry
	for rows.Next() {
		var e models.CashHistoryEntry
		err := rows.Scan(&e.ID, &e.Date, &e.Amount, &e.Currency, &e.Type, &e.Description, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash history: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
