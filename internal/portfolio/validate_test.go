package portfolio

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericString_UnmarshalJSON(t *testing.T) {
	var in TradeInput
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-01-02","type":"buy","price":1200.5,"quantity":"1,000"}`), &in))
	assert.Equal(t, NumericString("1200.5"), in.Price)
	assert.Equal(t, NumericString("1,000"), in.Quantity)

	require.NoError(t, json.Unmarshal([]byte(`{"price":null}`), &in))
	assert.Equal(t, NumericString(""), in.Price)

	assert.Error(t, json.Unmarshal([]byte(`{"price":true}`), &in))
}

func TestParseTrade(t *testing.T) {
	tr, err := ParseTrade(TradeInput{Date: "2025-01-02", Type: "SELL", Price: " 1,234.50 ", Quantity: "3", Memo: " note "})
	require.NoError(t, err)
	assert.Equal(t, "sell", tr.Type)
	assertDecimal(t, "1234.5", tr.Price)
	assertDecimal(t, "3", tr.Quantity)
	assert.Equal(t, "note", tr.Memo)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), tr.Date)

	tr, err = ParseTrade(TradeInput{Date: "2025-01-02", Price: "1", Quantity: "1"})
	require.NoError(t, err)
	assert.Equal(t, "buy", tr.Type)

	_, err = ParseTrade(TradeInput{Date: "2025-01-02", Price: "-5", Quantity: "1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
	assert.Equal(t, "invalid price: must be greater than zero", verr.Error())

	_, err = ParseTrade(TradeInput{Date: "2025-01-02", Price: "1", Quantity: "1e"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "005930", NormalizeTicker(" 005930 "))
	assert.Equal(t, "BRK.B", NormalizeTicker("brk.b"))
	assert.Equal(t, "", NormalizeTicker("  "))
}

func TestParseHolding(t *testing.T) {
	h, err := ParseHolding(HoldingInput{Ticker: "tsla", Sector: "auto", Category: "growth", Volatility: "Volatile"})
	require.NoError(t, err)
	assert.Equal(t, "TSLA", h.Ticker)
	assert.Equal(t, "volatile", h.Volatility)
	assert.NotNil(t, h.Trades)

	_, err = ParseHolding(HoldingInput{Ticker: "a/b", Sector: "x", Category: "y"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ticker", verr.Field)

	_, err = ParseHolding(HoldingInput{Ticker: "TSLA", Sector: "x"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
}

func TestParseCash(t *testing.T) {
	today := time.Date(2025, 3, 4, 15, 4, 5, 0, time.UTC)

	cur, amount, date, err := ParseCash(CashInput{Currency: "usd", Amount: "1,500"}, today)
	require.NoError(t, err)
	assert.Equal(t, "USD", cur)
	assertDecimal(t, "1500", amount)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), date)

	_, _, _, err = ParseCash(CashInput{Currency: "KRW", Amount: "0"}, today)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
}

func TestParseYearMonth(t *testing.T) {
	ym, err := ParseYearMonth(" 2025-02 ")
	require.NoError(t, err)
	assert.Equal(t, "2025-02", ym)

	ym, err = ParseYearMonth("")
	require.NoError(t, err)
	assert.Empty(t, ym)

	_, err = ParseYearMonth("2025-2-1")
	assert.Error(t, err)
}
