package portfolio

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// NumericString accepts either a JSON string or a JSON number and keeps its
// text so parsing happens in one place.
type NumericString string

// UnmarshalJSON implements json.Unmarshaler
func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumericString(num.String())
	return nil
}

// TradeInput is an unvalidated trade form
type TradeInput struct {
	Date     string        `json:"date"`
	Type     string        `json:"type"`
	Price    NumericString `json:"price"`
	Quantity NumericString `json:"quantity"`
	Memo     string        `json:"memo"`
}

// HoldingInput is an unvalidated "add ticker" form
type HoldingInput struct {
	Ticker     string `json:"ticker"`
	Sector     string `json:"sector"`
	Category   string `json:"category"`
	Volatility string `json:"volatility"`
}

// HoldingUpdate carries the descriptive fields to change on a holding. Nil
// fields are left untouched.
type HoldingUpdate struct {
	CompanyName *string `json:"company_name"`
	Sector      *string `json:"sector"`
	Category    *string `json:"category"`
	Volatility  *string `json:"volatility"`
}

// CashInput is an unvalidated deposit or withdrawal form
type CashInput struct {
	Currency    string        `json:"currency"`
	Amount      NumericString `json:"amount"`
	Date        string        `json:"date"`
	Description string        `json:"description"`
}

// MemoInput is an unvalidated memo form
type MemoInput struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ParseTrade validates a trade form. The returned trade has no ID yet.
func ParseTrade(in TradeInput) (models.Trade, error) {
	date, err := parseDate("date", in.Date)
	if err != nil {
		return models.Trade{}, err
	}
	typ := strings.ToLower(strings.TrimSpace(in.Type))
	if typ == "" {
		typ = models.TradeTypeBuy
	}
	if typ != models.TradeTypeBuy && typ != models.TradeTypeSell {
		return models.Trade{}, &ValidationError{Field: "type", Message: "must be buy or sell"}
	}
	price, err := parsePositive("price", string(in.Price))
	if err != nil {
		return models.Trade{}, err
	}
	quantity, err := parsePositive("quantity", string(in.Quantity))
	if err != nil {
		return models.Trade{}, err
	}
	return models.Trade{
		Date:     date,
		Type:     typ,
		Price:    price,
		Quantity: quantity,
		Memo:     strings.TrimSpace(in.Memo),
	}, nil
}

// ParseHolding validates an "add ticker" form and normalizes the ticker
func ParseHolding(in HoldingInput) (models.Holding, error) {
	ticker := NormalizeTicker(in.Ticker)
	if ticker == "" {
		return models.Holding{}, &ValidationError{Field: "ticker", Message: "is required"}
	}
	if strings.ContainsAny(ticker, "/ ") {
		return models.Holding{}, &ValidationError{Field: "ticker", Message: "contains invalid characters"}
	}
	sector := strings.TrimSpace(in.Sector)
	if sector == "" {
		return models.Holding{}, &ValidationError{Field: "sector", Message: "is required"}
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return models.Holding{}, &ValidationError{Field: "category", Message: "is required"}
	}
	volatility, err := parseVolatility(in.Volatility)
	if err != nil {
		return models.Holding{}, err
	}
	return models.Holding{
		Ticker:     ticker,
		Sector:     sector,
		Category:   category,
		Volatility: volatility,
		Trades:     []models.Trade{},
	}, nil
}

// ParseCash validates a cash form. An empty date means today.
func ParseCash(in CashInput, today time.Time) (currency string, amount decimal.Decimal, date time.Time, err error) {
	currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if !models.ValidCurrency(currency) {
		return "", decimal.Zero, time.Time{}, &ValidationError{Field: "currency", Message: "must be KRW or USD"}
	}
	amount, err = parsePositive("amount", string(in.Amount))
	if err != nil {
		return "", decimal.Zero, time.Time{}, err
	}
	if strings.TrimSpace(in.Date) == "" {
		return currency, amount, truncateDay(today), nil
	}
	date, err = parseDate("date", in.Date)
	if err != nil {
		return "", decimal.Zero, time.Time{}, err
	}
	return currency, amount, date, nil
}

// ParseMemo validates a memo form. An empty date means today.
func ParseMemo(in MemoInput, today time.Time) (models.Memo, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.Memo{}, &ValidationError{Field: "content", Message: "is required"}
	}
	date := truncateDay(today)
	if strings.TrimSpace(in.Date) != "" {
		var err error
		if date, err = parseDate("date", in.Date); err != nil {
			return models.Memo{}, err
		}
	}
	return models.Memo{
		Date:    date,
		Title:   strings.TrimSpace(in.Title),
		Content: content,
	}, nil
}

// NormalizeTicker keeps numeric Korean codes as-is and upper-cases the rest
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(ticker)
	if models.IsKoreanTicker(ticker) {
		return ticker
	}
	return strings.ToUpper(ticker)
}

// ParseYearMonth validates a YYYY-MM ledger key. Empty is allowed.
func ParseYearMonth(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01", v); err != nil {
		return "", &ValidationError{Field: "month", Message: "must be YYYY-MM"}
	}
	return v, nil
}

func parseVolatility(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if !models.ValidVolatility(v) {
		return "", &ValidationError{Field: "volatility", Message: "must be volatile, neutral or stable"}
	}
	return v, nil
}

func parsePositive(field, raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return decimal.Zero, &ValidationError{Field: field, Message: "is required"}
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Message: "must be a number"}
	}
	if !v.IsPositive() {
		return decimal.Zero, &ValidationError{Field: field, Message: "must be greater than zero"}
	}
	return v, nil
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &ValidationError{Field: field, Message: "is required"}
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: "must be YYYY-MM-DD"}
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
