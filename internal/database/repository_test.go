package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

func TestHoldingsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

	t.Run("PutHolding round-trips trades and metrics", func(t *testing.T) {
		testDB.TruncateAll(t)

		h := &models.Holding{
			Ticker:      "005930",
			CompanyName: "Samsung Electronics",
			Sector:      "tech",
			Category:    "dividend",
			Volatility:  models.VolatilityStable,
			Trades: []models.Trade{
				{ID: "t1", Date: day(1), Type: models.TradeTypeBuy, Price: decimal.NewFromInt(1000), Quantity: decimal.NewFromInt(10)},
				{ID: "t2", Date: day(3), Type: models.TradeTypeSell, Price: decimal.NewFromInt(1500), Quantity: decimal.NewFromInt(5), AvgBuyPrice: decimal.NewFromInt(1000), Memo: "trim"},
			},
			CurrentPrice:    decimal.NewFromInt(1300),
			CurrentQuantity: decimal.NewFromInt(5),
			AvgPrice:        decimal.NewFromInt(1000),
			Profit:          decimal.NewFromInt(1500),
			ProfitRate:      decimal.NewFromInt(30),
			ValueInKRW:      decimal.NewFromInt(6500),
			Weight:          decimal.RequireFromString("12.34"),
			RealizedProfit:  decimal.NewFromInt(2500),
		}
		require.NoError(t, testDB.PutHolding("u1", h))

		got, err := testDB.GetHolding("u1", "005930")
		require.NoError(t, err)
		assert.Equal(t, "Samsung Electronics", got.CompanyName)
		assert.Equal(t, models.VolatilityStable, got.Volatility)
		require.Len(t, got.Trades, 2)
		assert.Equal(t, "t2", got.Trades[1].ID)
		assert.Equal(t, "trim", got.Trades[1].Memo)
		assert.True(t, decimal.NewFromInt(1000).Equal(got.Trades[1].AvgBuyPrice))
		assert.True(t, day(3).Equal(got.Trades[1].Date))
		assert.True(t, decimal.RequireFromString("12.34").Equal(got.Weight))
		assert.True(t, decimal.NewFromInt(6500).Equal(got.ValueInKRW))
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("PutHolding overwrites existing holding", func(t *testing.T) {
		testDB.TruncateAll(t)

		h := &models.Holding{Ticker: "AAPL", Sector: "tech", Category: "growth"}
		require.NoError(t, testDB.PutHolding("u1", h))

		h.Sector = "hardware"
		h.Trades = []models.Trade{{ID: "t1", Date: day(2), Type: models.TradeTypeBuy, Price: decimal.NewFromInt(150), Quantity: decimal.NewFromInt(1)}}
		require.NoError(t, testDB.PutHolding("u1", h))

		got, err := testDB.GetHolding("u1", "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "hardware", got.Sector)
		assert.Len(t, got.Trades, 1)
	})

	t.Run("holdings are scoped per user", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.PutHolding("u1", &models.Holding{Ticker: "AAPL"}))
		require.NoError(t, testDB.PutHolding("u1", &models.Holding{Ticker: "005930"}))
		require.NoError(t, testDB.PutHolding("u2", &models.Holding{Ticker: "TSLA"}))

		holdings, err := testDB.ListHoldings("u1")
		require.NoError(t, err)
		require.Len(t, holdings, 2)
		assert.Equal(t, "005930", holdings[0].Ticker)
		assert.Equal(t, "AAPL", holdings[1].Ticker)
		assert.NotNil(t, holdings[0].Trades)

		_, err = testDB.GetHolding("u2", "AAPL")
		assert.ErrorIs(t, err, models.ErrNotFound)

		ids, err := testDB.ListUserIDs()
		require.NoError(t, err)
		assert.Equal(t, []string{"u1", "u2"}, ids)
	})

	t.Run("DeleteHolding removes holding", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.PutHolding("u1", &models.Holding{Ticker: "AAPL"}))
		require.NoError(t, testDB.DeleteHolding("u1", "AAPL"))

		_, err := testDB.GetHolding("u1", "AAPL")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, testDB.DeleteHolding("u1", "AAPL"), models.ErrNotFound)
	})
}

func TestCashRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("PutCash upserts per currency", func(t *testing.T) {
		testDB.TruncateAll(t)

		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, testDB.PutCash("u1", &models.CashPosition{Currency: models.CurrencyKRW, Amount: decimal.NewFromInt(1000), UpdatedAt: now}))
		require.NoError(t, testDB.PutCash("u1", &models.CashPosition{Currency: models.CurrencyKRW, Amount: decimal.NewFromInt(2500), Weight: decimal.NewFromInt(100), UpdatedAt: now}))
		require.NoError(t, testDB.PutCash("u1", &models.CashPosition{Currency: models.CurrencyUSD, Amount: decimal.RequireFromString("10.25"), UpdatedAt: now}))

		cash, err := testDB.ListCash("u1")
		require.NoError(t, err)
		require.Len(t, cash, 2)
		assert.Equal(t, models.CurrencyKRW, cash[0].Currency)
		assert.True(t, decimal.NewFromInt(2500).Equal(cash[0].Amount))
		assert.True(t, decimal.NewFromInt(100).Equal(cash[0].Weight))
		assert.True(t, decimal.RequireFromString("10.25").Equal(cash[1].Amount))
	})

	t.Run("cash history filters by month and orders newest first", func(t *testing.T) {
		testDB.TruncateAll(t)

		entries := []*models.CashHistoryEntry{
			{Date: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1000), Currency: models.CurrencyKRW, Type: models.CashTypeDeposit, CreatedAt: time.Now()},
			{Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-300), Currency: models.CurrencyKRW, Type: models.CashTypeStockBuy, Description: "BUY 005930", CreatedAt: time.Now()},
			{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-100), Currency: models.CurrencyKRW, Type: models.CashTypeWithdraw, CreatedAt: time.Now()},
		}
		for _, e := range entries {
			require.NoError(t, testDB.AppendCashHistory("u1", e))
			assert.NotZero(t, e.ID)
		}

		jan, err := testDB.ListCashHistory("u1", "2025-01")
		require.NoError(t, err)
		require.Len(t, jan, 2)
		assert.Equal(t, models.CashTypeStockBuy, jan[0].Type)
		assert.Equal(t, "BUY 005930", jan[0].Description)
		assert.True(t, decimal.NewFromInt(-300).Equal(jan[0].Amount))

		all, err := testDB.ListCashHistory("u1", "")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, models.CashTypeWithdraw, all[0].Type)

		other, err := testDB.ListCashHistory("u2", "")
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestMemosRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	testDB.TruncateAll(t)
	now := time.Now().UTC().Truncate(time.Second)

	m := &models.Memo{
		ID:        "8f14e45f-ceea-4e7a-9b3e-2d4c1e0e5a11",
		Date:      time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		Title:     "plan",
		Content:   "rebalance in Q2",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, testDB.PutMemo("u1", m))

	m.Content = "rebalance in Q3"
	require.NoError(t, testDB.PutMemo("u1", m))

	got, err := testDB.GetMemo("u1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "rebalance in Q3", got.Content)

	_, err = testDB.GetMemo("u2", m.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	memos, err := testDB.ListMemos("u1")
	require.NoError(t, err)
	assert.Len(t, memos, 1)

	require.NoError(t, testDB.DeleteMemo("u1", m.ID))
	assert.ErrorIs(t, testDB.DeleteMemo("u1", m.ID), models.ErrNotFound)
}

func TestQuotesAndImportsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("SaveQuote keeps the latest price", func(t *testing.T) {
		testDB.TruncateAll(t)

		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, testDB.SaveQuote(&models.Quote{Ticker: models.FXTicker, Price: decimal.NewFromInt(1400), FetchedAt: now}))
		require.NoError(t, testDB.SaveQuote(&models.Quote{Ticker: models.FXTicker, Price: decimal.RequireFromString("1432.5"), FetchedAt: now}))

		q, err := testDB.GetQuote(models.FXTicker)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1432.5").Equal(q.Price))

		_, err = testDB.GetQuote("NOPE")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("imported trades are idempotent", func(t *testing.T) {
		testDB.TruncateAll(t)

		exists, err := testDB.ImportedTradeExists("robinhood", "o-1")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, testDB.RecordImportedTrade("u1", "robinhood", "o-1", "AAPL", "t-1"))
		require.NoError(t, testDB.RecordImportedTrade("u1", "robinhood", "o-1", "AAPL", "t-2"))

		exists, err = testDB.ImportedTradeExists("robinhood", "o-1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = testDB.ImportedTradeExists("schwab", "o-1")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
