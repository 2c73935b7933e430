// Package quotes fetches current prices and the USD/KRW rate from the quote
// API and falls back to last-known values when it is unavailable.
package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// ErrNoPrice is returned when the API answers without a usable price
var ErrNoPrice = errors.New("no price in response")

// FetchError reports a failed price or FX lookup
type FetchError struct {
	Ticker string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch quote for %s: %v", e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client calls GET {baseURL}/stock-price?ticker=SYMBOL
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a quote API client allowing requestsPerSecond calls
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond int) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// Fetch returns the current native-currency price of ticker. Use
// models.FXTicker for the USD/KRW rate.
func (c *Client) Fetch(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return decimal.Zero, &FetchError{Ticker: ticker, Err: err}
	}

	endpoint := fmt.Sprintf("%s/stock-price?ticker=%s", c.baseURL, url.QueryEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, &FetchError{Ticker: ticker, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, &FetchError{Ticker: ticker, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, &FetchError{Ticker: ticker, Err: fmt.Errorf("quote api http %d", resp.StatusCode)}
	}

	var body struct {
		Price json.RawMessage `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, &FetchError{Ticker: ticker, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	price, err := ParsePrice(body.Price)
	if err != nil {
		return decimal.Zero, &FetchError{Ticker: ticker, Err: err}
	}
	return price, nil
}

// ParsePrice decodes a price given as a JSON number or a string that may
// contain thousands separators. Missing, zero and negative prices are errors.
func ParsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, ErrNoPrice
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, fmt.Errorf("invalid price %s: %w", raw, err)
		}
		text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	}

	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", text, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, ErrNoPrice
	}
	return price, nil
}
