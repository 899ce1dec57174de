// Package trade prices player sales against market depth. Selling more than
// a market can absorb depresses the realized price, and rarer commodities
// trade in thinner markets, so their prices decay steeper for the same
// relative sale size.
package trade

import "math"

// SaleDetails is the outcome of pricing a prospective sale.
type SaleDetails struct {
	TotalPrice            int     `json:"total_price"`
	EffectivePricePerUnit float64 `json:"effective_price_per_unit"`
	NetProfit             float64 `json:"net_profit"`
}

// SaleInputs are the market and wallet facts a sale is priced against.
// BasePrice is the intel-aware unit sell price at the player's location.
type SaleInputs struct {
	Stock     int
	Tier      int
	BasePrice int
	AvgCost   float64 // player's average acquisition cost per unit
	BonusSum  float64 // stacked percentage profit bonuses, as a fraction
	Quantity  int
}

// Up to this fraction of current stock sells at full price.
const impactThreshold = 0.10

// QuoteSale computes the slippage-adjusted proceeds for selling Quantity
// units into a market holding Stock.
//
// Sales at or below 10% of stock take no price impact. Beyond that the
// reduction grows with the quantity/stock ratio, with tier-dependent slope
// and cap: tier <=2 caps at 10%, tier <=5 at 25%, higher tiers at 40%.
func QuoteSale(in SaleInputs) SaleDetails {
	if in.Stock <= 0 || in.Quantity <= 0 {
		return SaleDetails{}
	}

	base := float64(in.BasePrice)
	effective := base
	var total int
	if float64(in.Quantity) <= float64(in.Stock)*impactThreshold {
		total = in.BasePrice * in.Quantity
	} else {
		excessRatio := float64(in.Quantity) / float64(in.Stock)
		effective = base * (1 - reductionFor(in.Tier, excessRatio))
		total = int(floorGuarded(effective * float64(in.Quantity)))
	}

	net := float64(total) - in.AvgCost*float64(in.Quantity)
	if net > 0 {
		net += net * in.BonusSum
	}
	return SaleDetails{
		TotalPrice:            total,
		EffectivePricePerUnit: effective,
		NetProfit:             net,
	}
}

// reductionFor maps the excess ratio to a price reduction for a tier.
func reductionFor(tier int, excessRatio float64) float64 {
	over := excessRatio - impactThreshold
	switch {
	case tier <= 2:
		return math.Min(0.10, over*0.2)
	case tier <= 5:
		return math.Min(0.25, over*0.5)
	default:
		return math.Min(0.40, over*0.8)
	}
}

// floorGuarded floors with a relative epsilon so products that land exactly
// on an integer don't lose a unit to float dust.
func floorGuarded(x float64) float64 {
	return math.Floor(x + math.Abs(x)*1e-12 + 1e-9)
}
