package valuation

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// Allocation is the result of a full weight recompute across every holding
// and cash position.
type Allocation struct {
	TotalAssetValue decimal.Decimal
	Holdings        map[string]decimal.Decimal // weight by ticker
	Cash            map[string]decimal.Decimal // weight by currency
	CashValues      map[string]decimal.Decimal // KRW value by currency
}

// CashValueInKRW converts a cash balance into KRW
func CashValueInKRW(c *models.CashPosition, fxRate decimal.Decimal) decimal.Decimal {
	return c.Amount.Mul(FXMultiplier(c.Currency, fxRate))
}

// Allocate computes every entity's share of total asset value. Holdings that
// are not currently held get weight zero and do not count towards the total.
func Allocate(holdings []*models.Holding, cash []*models.CashPosition, fxRate decimal.Decimal) Allocation {
	a := Allocation{
		TotalAssetValue: decimal.Zero,
		Holdings:        make(map[string]decimal.Decimal, len(holdings)),
		Cash:            make(map[string]decimal.Decimal, len(cash)),
		CashValues:      make(map[string]decimal.Decimal, len(cash)),
	}

	values := make([]decimal.Decimal, 0, len(holdings)+len(cash))
	for _, h := range holdings {
		v := decimal.Zero
		if h.IsHeld() {
			v = h.ValueInKRW
		}
		values = append(values, v)
	}
	for _, c := range cash {
		v := CashValueInKRW(c, fxRate)
		a.CashValues[c.Currency] = v
		values = append(values, v)
	}
	for _, v := range values {
		a.TotalAssetValue = a.TotalAssetValue.Add(v)
	}

	weights := Weights(values)
	for i, h := range holdings {
		a.Holdings[h.Ticker] = weights[i]
	}
	for i, c := range cash {
		a.Cash[c.Currency] = weights[len(holdings)+i]
	}
	return a
}

// Apply writes the computed weights and cash values onto the records
func (a Allocation) Apply(holdings []*models.Holding, cash []*models.CashPosition) {
	for _, h := range holdings {
		h.Weight = a.Holdings[h.Ticker]
	}
	for _, c := range cash {
		c.Weight = a.Cash[c.Currency]
		c.ValueInKRW = a.CashValues[c.Currency].Round(0)
	}
}

// Weights turns values into percentages with two decimal places using
// largest-remainder rounding, so a positive total always yields weights
// summing to exactly 100.00. Non-positive values get zero weight. Ties go to
// the earlier entry.
func Weights(values []decimal.Decimal) []decimal.Decimal {
	weights := make([]decimal.Decimal, len(values))
	total := decimal.Zero
	for _, v := range values {
		if v.IsPositive() {
			total = total.Add(v)
		}
	}
	if !total.IsPositive() {
		for i := range weights {
			weights[i] = decimal.Zero
		}
		return weights
	}

	type share struct {
		index     int
		remainder decimal.Decimal
	}
	// work in hundredths of a percent
	units := decimal.NewFromInt(10000)
	allocated := decimal.Zero
	shares := make([]share, 0, len(values))
	for i, v := range values {
		if !v.IsPositive() {
			weights[i] = decimal.Zero
			continue
		}
		raw := v.Div(total).Mul(units)
		floor := raw.Floor()
		weights[i] = floor
		allocated = allocated.Add(floor)
		shares = append(shares, share{index: i, remainder: raw.Sub(floor)})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].remainder.GreaterThan(shares[j].remainder)
	})
	missing := units.Sub(allocated).IntPart()
	for k := 0; k < int(missing) && k < len(shares); k++ {
		idx := shares[k].index
		weights[idx] = weights[idx].Add(decimal.NewFromInt(1))
	}

	for i := range weights {
		weights[i] = weights[i].Div(hundred).Round(2)
	}
	return weights
}
