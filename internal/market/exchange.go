package market

import (
	"fmt"
	"math/rand"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Listing is the live market state for one commodity at one location.
type Listing struct {
	Price int `json:"price"`
	Stock int `json:"stock"`
}

// DealOverride is the price override an active intel deal imposes at its
// deal location. At most one is in effect at a time.
type DealOverride struct {
	LocationID  string
	CommodityID string
	Price       int
}

// Exchange holds per-location prices and stock and answers intel-aware price
// queries. The galactic average is memoized per in-game day; a
// singleflight.Group deduplicates concurrent recomputation when API handlers
// race the turn loop.
type Exchange struct {
	mu       sync.RWMutex
	data     *Data
	listings map[string]map[string]*Listing // location -> commodity -> listing
	override *DealOverride
	rng      *rand.Rand

	avgMu    sync.Mutex
	avgDay   int
	avgCache map[string]float64
	group    singleflight.Group
}

// NewExchange seeds listings for every location/commodity pair.
func NewExchange(data *Data, rng *rand.Rand) *Exchange {
	e := &Exchange{
		data:     data,
		listings: make(map[string]map[string]*Listing, len(data.LocationIDs)),
		rng:      rng,
		avgDay:   -1,
		avgCache: make(map[string]float64),
	}
	for _, locID := range data.LocationIDs {
		loc := data.Locations[locID]
		row := make(map[string]*Listing, len(data.CommodityIDs))
		for _, comID := range data.CommodityIDs {
			c := data.Commodities[comID]
			span := c.BasePriceMax - c.BasePriceMin
			price := int(float64(c.BasePriceMin+rng.Intn(span+1)) * loc.WealthMod)
			if price < 1 {
				price = 1
			}
			target := stockTarget(c.Tier)
			stock := int(float64(target) * (0.6 + rng.Float64()*0.8))
			row[comID] = &Listing{Price: price, Stock: stock}
		}
		e.listings[locID] = row
	}
	return e
}

// stockTarget returns the equilibrium stock level for a tier.
// Rarer goods trade in thinner markets.
func stockTarget(tier int) int {
	t := 2400 / tier
	if t < 40 {
		t = 40
	}
	return t
}

// Data returns the static catalogs.
func (e *Exchange) Data() *Data {
	return e.data
}

// GetPrice returns the current unit price at a location. The result is
// intel-aware: an active deal override wins at its deal location.
func (e *Exchange) GetPrice(locationID, commodityID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if o := e.override; o != nil && o.LocationID == locationID && o.CommodityID == commodityID {
		return o.Price
	}
	l := e.listing(locationID, commodityID)
	if l == nil {
		return 0
	}
	return l.Price
}

// Stock returns the current market stock at a location.
func (e *Exchange) Stock(locationID, commodityID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	l := e.listing(locationID, commodityID)
	if l == nil {
		return 0
	}
	return l.Stock
}

// AddStock deposits sold units into the local market.
func (e *Exchange) AddStock(locationID, commodityID string, qty int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l := e.listing(locationID, commodityID); l != nil {
		l.Stock += qty
	}
}

// TakeStock withdraws purchased units from the local market.
func (e *Exchange) TakeStock(locationID, commodityID string, qty int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	l := e.listing(locationID, commodityID)
	if l == nil {
		return fmt.Errorf("no listing for %s at %s", commodityID, locationID)
	}
	if l.Stock < qty {
		return fmt.Errorf("stock %d < requested %d for %s at %s", l.Stock, qty, commodityID, locationID)
	}
	l.Stock -= qty
	return nil
}

// SetOverride installs the price override for an active deal.
func (e *Exchange) SetOverride(o *DealOverride) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.override = o
}

// ClearOverride removes the active override, if any.
func (e *Exchange) ClearOverride() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.override = nil
}

// Override returns the current override, or nil.
func (e *Exchange) Override() *DealOverride {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.override
}

func (e *Exchange) listing(locationID, commodityID string) *Listing {
	row, ok := e.listings[locationID]
	if !ok {
		return nil
	}
	return row[commodityID]
}

// GalacticAverage returns the mean listed price of a commodity across all
// locations, the reference baseline an intel discount anchors on. Overrides
// are deliberately excluded so an active deal does not drag its own anchor.
// The value is cached for the given day.
func (e *Exchange) GalacticAverage(commodityID string, day int) float64 {
	e.avgMu.Lock()
	if day != e.avgDay {
		e.avgCache = make(map[string]float64)
		e.avgDay = day
	}
	if v, ok := e.avgCache[commodityID]; ok {
		e.avgMu.Unlock()
		return v
	}
	e.avgMu.Unlock()

	key := fmt.Sprintf("%d/%s", day, commodityID)
	v, _, _ := e.group.Do(key, func() (interface{}, error) {
		return e.computeAverage(commodityID), nil
	})
	avg := v.(float64)

	e.avgMu.Lock()
	if day == e.avgDay {
		e.avgCache[commodityID] = avg
	}
	e.avgMu.Unlock()
	return avg
}

func (e *Exchange) computeAverage(commodityID string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var sum, n float64
	for _, row := range e.listings {
		if l, ok := row[commodityID]; ok {
			sum += float64(l.Price)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// DriftTick advances the market one day: prices relax toward the
// wealth-adjusted base midpoint with a small random wobble, and stock
// recovers toward its tier target. Markets crash faster than they recover,
// so stock depletion heals at half the replenish rate.
func (e *Exchange) DriftTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	const priceRelax = 0.05
	for locID, row := range e.listings {
		wealth := e.data.Locations[locID].WealthMod
		for comID, l := range row {
			c := e.data.Commodities[comID]
			mid := float64(c.BasePriceMin+c.BasePriceMax) / 2 * wealth
			wobble := 1 + (e.rng.Float64()-0.5)*0.06 // ±3%
			p := (float64(l.Price) + (mid-float64(l.Price))*priceRelax) * wobble
			if p < 1 {
				p = 1
			}
			l.Price = int(p)

			target := stockTarget(c.Tier)
			if l.Stock < target {
				l.Stock += (target - l.Stock) / 10
			} else if l.Stock > target {
				l.Stock -= (l.Stock - target) / 20
			}
		}
	}
}

// PricesAt returns a copy of all listings at a location, override applied.
func (e *Exchange) PricesAt(locationID string) map[string]Listing {
	e.mu.RLock()
	defer e.mu.RUnlock()
	row, ok := e.listings[locationID]
	if !ok {
		return nil
	}
	out := make(map[string]Listing, len(row))
	for comID, l := range row {
		entry := *l
		if o := e.override; o != nil && o.LocationID == locationID && o.CommodityID == comID {
			entry.Price = o.Price
		}
		out[comID] = entry
	}
	return out
}
