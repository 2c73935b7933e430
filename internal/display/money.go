// Package display renders portfolio figures as human-readable strings.
package display

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
	"github.com/trogers1052/portfolio-tracker/internal/valuation"
)

// Money formats amount in the currency's minor-unit precision, e.g.
// ₩1,234,567 or $1,234.56. Amounts are rounded half away from zero.
func Money(amount decimal.Decimal, currency string) string {
	// money.New never returns a nil currency, unknown codes get a default formatter
	cur := money.New(0, currency).Currency()
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// SignedMoney is Money with an explicit + on positive amounts
func SignedMoney(amount decimal.Decimal, currency string) string {
	if amount.Round(2).IsPositive() {
		return "+" + Money(amount, currency)
	}
	return Money(amount, currency)
}

// Percent formats a rate already expressed in percent, e.g. 18.18%
func Percent(rate decimal.Decimal) string {
	return rate.StringFixed(2) + "%"
}

// SignedPercent is Percent with an explicit + on positive rates
func SignedPercent(rate decimal.Decimal) string {
	if rate.Round(2).IsPositive() {
		return "+" + Percent(rate)
	}
	return Percent(rate)
}

// SummaryView is the display form of a portfolio summary
type SummaryView struct {
	TotalInvestment string `json:"total_investment"`
	TotalValue      string `json:"total_value"`
	TotalProfit     string `json:"total_profit"`
	TotalProfitRate string `json:"total_profit_rate"`
	CashValue       string `json:"cash_value"`
	TotalAssetValue string `json:"total_asset_value"`
	RealizedProfit  string `json:"realized_profit"`
	CAGR            string `json:"cagr"`
	FXRate          string `json:"fx_rate"`
}

// Summary formats every KRW total. CAGR shows "-" when it is undefined.
func Summary(s valuation.Summary) SummaryView {
	v := SummaryView{
		TotalInvestment: Money(s.TotalInvestment, models.CurrencyKRW),
		TotalValue:      Money(s.TotalValue, models.CurrencyKRW),
		TotalProfit:     SignedMoney(s.TotalProfit, models.CurrencyKRW),
		TotalProfitRate: SignedPercent(s.TotalProfitRate),
		CashValue:       Money(s.CashValue, models.CurrencyKRW),
		TotalAssetValue: Money(s.TotalAssetValue, models.CurrencyKRW),
		RealizedProfit:  SignedMoney(s.RealizedProfit, models.CurrencyKRW),
		CAGR:            "-",
		FXRate:          Money(s.FXRate, models.CurrencyKRW),
	}
	if s.HasCAGR {
		v.CAGR = SignedPercent(s.CAGR.Mul(decimal.NewFromInt(100)))
	}
	return v
}

// HoldingView is the display form of one holding. Prices are in the
// instrument's own currency, value and profit in KRW.
type HoldingView struct {
	Ticker         string `json:"ticker"`
	ChartSymbol    string `json:"chart_symbol"`
	CurrentPrice   string `json:"current_price"`
	AvgPrice       string `json:"avg_price"`
	Value          string `json:"value"`
	Profit         string `json:"profit"`
	ProfitRate     string `json:"profit_rate"`
	RealizedProfit string `json:"realized_profit"`
	Weight         string `json:"weight"`
}

// Holding formats the derived metrics of h
func Holding(h *models.Holding) HoldingView {
	cur := h.Currency()
	return HoldingView{
		Ticker:         h.Ticker,
		ChartSymbol:    models.ChartSymbol(h.Ticker),
		CurrentPrice:   Money(h.CurrentPrice, cur),
		AvgPrice:       Money(h.AvgPrice, cur),
		Value:          Money(h.ValueInKRW, models.CurrencyKRW),
		Profit:         SignedMoney(h.Profit, models.CurrencyKRW),
		ProfitRate:     SignedPercent(h.ProfitRate),
		RealizedProfit: SignedMoney(h.RealizedProfit, cur),
		Weight:         Percent(h.Weight),
	}
}
