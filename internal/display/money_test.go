package display

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/trogers1052/portfolio-tracker/internal/models"
	"github.com/trogers1052/portfolio-tracker/internal/valuation"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234567", "KRW", "₩1,234,567"},
		{"1234567.6", "KRW", "₩1,234,568"},
		{"1234.56", "USD", "$1,234.56"},
		{"0.005", "USD", "$0.01"},
		{"-1500", "KRW", "-₩1,500"},
		{"0", "USD", "$0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, Money(d(tt.amount), tt.currency))
		})
	}
}

func TestSignedMoneyAndPercent(t *testing.T) {
	assert.Equal(t, "+₩3,000", SignedMoney(d("3000"), models.CurrencyKRW))
	assert.Equal(t, "-$2.50", SignedMoney(d("-2.5"), models.CurrencyUSD))
	assert.Equal(t, "₩0", SignedMoney(d("0"), models.CurrencyKRW))

	assert.Equal(t, "18.18%", Percent(d("18.18")))
	assert.Equal(t, "5.00%", Percent(d("5")))
	assert.Equal(t, "+18.18%", SignedPercent(d("18.18")))
	assert.Equal(t, "-3.10%", SignedPercent(d("-3.1")))
	assert.Equal(t, "0.00%", SignedPercent(d("0.001")))
}

func TestSummary(t *testing.T) {
	s := valuation.Summary{
		TotalInvestment: d("16500"),
		TotalValue:      d("19500"),
		TotalProfit:     d("3000"),
		TotalProfitRate: d("18.18"),
		CashValue:       d("85500"),
		TotalAssetValue: d("105000"),
		RealizedProfit:  d("2000"),
		FXRate:          d("1450"),
		AsOf:            time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}

	v := Summary(s)
	assert.Equal(t, "₩16,500", v.TotalInvestment)
	assert.Equal(t, "+₩3,000", v.TotalProfit)
	assert.Equal(t, "+18.18%", v.TotalProfitRate)
	assert.Equal(t, "₩105,000", v.TotalAssetValue)
	assert.Equal(t, "₩1,450", v.FXRate)
	assert.Equal(t, "-", v.CAGR)

	s.CAGR = d("0.123456")
	s.HasCAGR = true
	assert.Equal(t, "+12.35%", Summary(s).CAGR)
}

func TestHolding(t *testing.T) {
	h := &models.Holding{
		Ticker:         "AAPL",
		CurrentPrice:   d("150"),
		AvgPrice:       d("120.5"),
		ValueInKRW:     d("2175000"),
		Profit:         d("427750"),
		ProfitRate:     d("24.48"),
		RealizedProfit: d("-10"),
		Weight:         d("40"),
	}

	v := Holding(h)
	assert.Equal(t, "AAPL", v.ChartSymbol)
	assert.Equal(t, "$150.00", v.CurrentPrice)
	assert.Equal(t, "$120.50", v.AvgPrice)
	assert.Equal(t, "₩2,175,000", v.Value)
	assert.Equal(t, "+₩427,750", v.Profit)
	assert.Equal(t, "-$10.00", v.RealizedProfit)
	assert.Equal(t, "40.00%", v.Weight)
}

func TestHolding_KoreanChartSymbol(t *testing.T) {
	v := Holding(&models.Holding{Ticker: "005930", CurrentPrice: d("71000")})
	assert.Equal(t, "005930.KS", v.ChartSymbol)
	assert.Equal(t, "₩71,000", v.CurrentPrice)
}
