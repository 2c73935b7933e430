// Package valuation turns a holding's trade history, its latest quote and
// the USD/KRW rate into cost basis, profit and allocation figures.
//
// Nothing in this package performs I/O. Callers fetch quotes and records,
// hand them in, and persist whatever comes back.
package valuation

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// HoldingResult holds the metrics derived from one holding.
// AvgPrice, Investment and RealizedProfit are in the instrument's native
// currency; ValueInKRW and Profit are converted to KRW.
type HoldingResult struct {
	CurrentQuantity decimal.Decimal
	AvgPrice        decimal.Decimal
	Investment      decimal.Decimal
	ValueInKRW      decimal.Decimal
	Profit          decimal.Decimal
	ProfitRate      decimal.Decimal
	RealizedProfit  decimal.Decimal

	// SellAvgPrices maps each sell trade ID to the running average cost at
	// the moment it was processed.
	SellAvgPrices map[string]decimal.Decimal
}

// FXMultiplier returns the factor converting an amount in currency into KRW
func FXMultiplier(currency string, fxRate decimal.Decimal) decimal.Decimal {
	if currency == models.CurrencyKRW {
		return decimal.NewFromInt(1)
	}
	return fxRate
}

// SortTrades returns a copy of trades ordered by date. Same-date trades keep
// their original order.
func SortTrades(trades []models.Trade) []models.Trade {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// ValueHolding runs the sequential average-cost pass over the holding's
// trades and values the remaining quantity at currentPrice.
func ValueHolding(h *models.Holding, currentPrice, fxRate decimal.Decimal) HoldingResult {
	fx := FXMultiplier(h.Currency(), fxRate)

	quantity := decimal.Zero
	investment := decimal.Zero
	realized := decimal.Zero
	sellAvg := make(map[string]decimal.Decimal)

	for _, t := range SortTrades(h.Trades) {
		switch t.Type {
		case models.TradeTypeBuy:
			quantity = quantity.Add(t.Quantity)
			investment = investment.Add(t.Amount())
		case models.TradeTypeSell:
			// Rejected at validation; a stored sell with nothing to sell is ignored.
			if !quantity.IsPositive() {
				continue
			}
			avgPrice := investment.Div(quantity)
			sellAmount := t.Quantity.Mul(avgPrice)
			quantity = quantity.Sub(t.Quantity)
			if quantity.IsPositive() {
				investment = investment.Sub(sellAmount)
			} else {
				investment = decimal.Zero
			}
			sellAvg[t.ID] = avgPrice

			basis := t.AvgBuyPrice
			if basis.IsZero() {
				basis = avgPrice
			}
			realized = realized.Add(t.Price.Sub(basis).Mul(t.Quantity))
		}
	}

	r := HoldingResult{
		CurrentQuantity: quantity,
		AvgPrice:        decimal.Zero,
		Investment:      investment,
		ValueInKRW:      currentPrice.Mul(quantity).Mul(fx),
		Profit:          decimal.Zero,
		ProfitRate:      decimal.Zero,
		RealizedProfit:  realized,
		SellAvgPrices:   sellAvg,
	}
	if quantity.IsPositive() {
		r.AvgPrice = investment.Div(quantity)
		r.Profit = currentPrice.Sub(r.AvgPrice).Mul(quantity).Mul(fx)
	} else {
		r.ValueInKRW = decimal.Zero
	}
	if !r.AvgPrice.IsZero() {
		r.ProfitRate = currentPrice.Sub(r.AvgPrice).Div(r.AvgPrice).Mul(hundred)
	}
	return r
}

// ApplyTo writes the derived fields onto the holding, rounded the way they
// are stored and displayed.
func (r HoldingResult) ApplyTo(h *models.Holding, currentPrice decimal.Decimal) {
	h.CurrentPrice = currentPrice
	h.CurrentQuantity = r.CurrentQuantity
	h.AvgPrice = r.AvgPrice.Round(2)
	h.Profit = r.Profit.Round(2)
	h.ProfitRate = r.ProfitRate.Round(2)
	h.ValueInKRW = r.ValueInKRW.Round(0)
	h.RealizedProfit = r.RealizedProfit.Round(2)
}

// Shortfall describes the first sell that exceeds the quantity held
// immediately before it.
type Shortfall struct {
	TradeID   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

// CheckHoldings replays trades in date order and returns the first sell whose
// quantity exceeds the running position, or nil when the sequence never
// goes negative.
func CheckHoldings(trades []models.Trade) *Shortfall {
	quantity := decimal.Zero
	for _, t := range SortTrades(trades) {
		switch t.Type {
		case models.TradeTypeBuy:
			quantity = quantity.Add(t.Quantity)
		case models.TradeTypeSell:
			if t.Quantity.GreaterThan(quantity) {
				return &Shortfall{TradeID: t.ID, Requested: t.Quantity, Available: quantity}
			}
			quantity = quantity.Sub(t.Quantity)
		}
	}
	return nil
}

// RealizedProfit returns the booked profit and its rate for a sell trade,
// measured against the cost basis snapshot taken at the sale. Buys yield zero.
func RealizedProfit(t models.Trade) (profit, rate decimal.Decimal) {
	if !t.IsSell() {
		return decimal.Zero, decimal.Zero
	}
	profit = t.Price.Sub(t.AvgBuyPrice).Mul(t.Quantity)
	if t.AvgBuyPrice.IsZero() {
		return profit, decimal.Zero
	}
	rate = t.Price.Sub(t.AvgBuyPrice).Div(t.AvgBuyPrice).Mul(hundred)
	return profit, rate
}
