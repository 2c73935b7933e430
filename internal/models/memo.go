package models

import "time"

// Memo is a free-form note kept alongside the portfolio
type Memo struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
