package valuation

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// Group labels used when an attribute is missing or for cash
const (
	GroupUnclassified = "unclassified"
	GroupUnset        = "unset"
	GroupCash         = "cash"
)

// Breakdown holds summed weights grouped by holding attribute
type Breakdown struct {
	Sector     map[string]decimal.Decimal `json:"sector"`
	Category   map[string]decimal.Decimal `json:"category"`
	Currency   map[string]decimal.Decimal `json:"currency"`
	Volatility map[string]decimal.Decimal `json:"volatility"`
}

// Group sums the stored weights of held holdings and cash positions by
// sector, category, instrument currency and volatility. Cash lands in the
// KRW currency bucket, the stable volatility bucket and its own category.
func Group(holdings []*models.Holding, cash []*models.CashPosition) Breakdown {
	b := Breakdown{
		Sector:     map[string]decimal.Decimal{},
		Category:   map[string]decimal.Decimal{},
		Currency:   map[string]decimal.Decimal{},
		Volatility: map[string]decimal.Decimal{},
	}
	add := func(m map[string]decimal.Decimal, key string, w decimal.Decimal) {
		m[key] = m[key].Add(w)
	}

	for _, h := range holdings {
		if !h.IsHeld() {
			continue
		}
		add(b.Sector, labelOr(h.Sector, GroupUnclassified), h.Weight)
		add(b.Category, labelOr(h.Category, GroupUnclassified), h.Weight)
		add(b.Currency, h.Currency(), h.Weight)
		add(b.Volatility, labelOr(h.Volatility, GroupUnset), h.Weight)
	}
	for _, c := range cash {
		if c.Weight.IsZero() {
			continue
		}
		add(b.Category, GroupCash, c.Weight)
		add(b.Currency, models.CurrencyKRW, c.Weight)
		add(b.Volatility, models.VolatilityStable, c.Weight)
	}
	return b
}

func labelOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Summary holds portfolio-wide totals in KRW
type Summary struct {
	TotalInvestment decimal.Decimal `json:"total_investment"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	TotalProfitRate decimal.Decimal `json:"total_profit_rate"`
	CashValue       decimal.Decimal `json:"cash_value"`
	TotalAssetValue decimal.Decimal `json:"total_asset_value"`
	RealizedProfit  decimal.Decimal `json:"realized_profit"`
	CAGR            decimal.Decimal `json:"cagr"`
	HasCAGR         bool            `json:"has_cagr"`
	ProfitableCount int             `json:"profitable_count"`
	LosingCount     int             `json:"losing_count"`
	FXRate          decimal.Decimal `json:"fx_rate"`
	Breakdown       Breakdown       `json:"breakdown"`
	AsOf            time.Time       `json:"as_of"`
}

const daysPerYear = 365.25

// Summarize aggregates the stored per-holding metrics. Investment is rebuilt
// from the trades since the stored average price is rounded. Only currently
// held holdings count towards investment, value and profit.
func Summarize(holdings []*models.Holding, cash []*models.CashPosition, fxRate decimal.Decimal, asOf time.Time) Summary {
	s := Summary{
		TotalInvestment: decimal.Zero,
		TotalValue:      decimal.Zero,
		CashValue:       decimal.Zero,
		RealizedProfit:  decimal.Zero,
		CAGR:            decimal.Zero,
		FXRate:          fxRate,
		AsOf:            asOf,
	}

	var earliestBuy time.Time
	for _, h := range holdings {
		fx := FXMultiplier(h.Currency(), fxRate)
		s.RealizedProfit = s.RealizedProfit.Add(h.RealizedProfit.Mul(fx))
		for _, t := range h.Trades {
			if t.IsBuy() && (earliestBuy.IsZero() || t.Date.Before(earliestBuy)) {
				earliestBuy = t.Date
			}
		}
		if !h.IsHeld() {
			continue
		}
		s.TotalInvestment = s.TotalInvestment.Add(ValueHolding(h, h.CurrentPrice, fxRate).Investment.Mul(fx))
		s.TotalValue = s.TotalValue.Add(h.ValueInKRW)
		switch {
		case h.Profit.IsPositive():
			s.ProfitableCount++
		case h.Profit.IsNegative():
			s.LosingCount++
		}
	}
	for _, c := range cash {
		s.CashValue = s.CashValue.Add(CashValueInKRW(c, fxRate))
	}

	s.TotalProfit = s.TotalValue.Sub(s.TotalInvestment)
	s.TotalProfitRate = decimal.Zero
	if s.TotalInvestment.IsPositive() {
		s.TotalProfitRate = s.TotalProfit.Div(s.TotalInvestment).Mul(hundred).Round(2)
	}
	s.TotalAssetValue = s.TotalValue.Add(s.CashValue)

	if !earliestBuy.IsZero() {
		years := asOf.Sub(earliestBuy).Hours() / 24 / daysPerYear
		if cagr, ok := CAGR(s.TotalAssetValue, s.TotalInvestment, years); ok {
			s.CAGR = cagr
			s.HasCAGR = true
		}
	}

	s.Breakdown = Group(holdings, cash)
	return s
}

// CAGR returns (endValue / investment)^(1/years) - 1 as a fraction. It
// reports false when years or investment is not positive.
func CAGR(endValue, investment decimal.Decimal, years float64) (decimal.Decimal, bool) {
	if years <= 0 || !investment.IsPositive() || endValue.IsNegative() {
		return decimal.Zero, false
	}
	ratio := endValue.Div(investment).InexactFloat64()
	v := math.Pow(ratio, 1/years) - 1
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v).Round(6), true
}
