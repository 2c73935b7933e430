package database

import (
	"database/sql"
	"fmt"

	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// ListMemos retrieves a user's memos newest first
func (db *DB) ListMemos(userID string) ([]*models.Memo, error) {
	query := `
		SELECT id, date, title, content, created_at, updated_at
		FROM memos
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memos: %w", err)
	}
	defer rows.Close()

	var memos []*models.Memo
	for rows.Next() {
		var m models.Memo
		if err := rows.Scan(&m.ID, &m.Date, &m.Title, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memo: %w", err)
		}
		memos = append(memos, &m)
	}
	return memos, rows.Err()
}

// GetMemo retrieves a memo by ID
func (db *DB) GetMemo(userID, id string) (*models.Memo, error) {
	query := `
		SELECT id, date, title, content, created_at, updated_at
		FROM memos
		WHERE user_id = $1 AND id = $2
	`
	var m models.Memo
	err := db.conn.QueryRow(query, userID, id).Scan(&m.ID, &m.Date, &m.Title, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("memo not found: %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memo: %w", err)
	}
	return &m, nil
}

// PutMemo inserts or updates a memo
func (db *DB) PutMemo(userID string, m *models.Memo) error {
	query := `
		INSERT INTO memos (id, user_id, date, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
		WHERE memos.user_id = EXCLUDED.user_id
	`
	_, err := db.conn.Exec(query, m.ID, userID, m.Date, m.Title, m.Content, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save memo: %w", err)
	}
	return nil
}

// DeleteMemo removes a memo
func (db *DB) DeleteMemo(userID, id string) error {
	result, err := db.conn.Exec(`DELETE FROM memos WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete memo: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("memo not found: %s: %w", id, models.ErrNotFound)
	}
	return nil
}
