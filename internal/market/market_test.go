package market

import (
	"math"
	"math/rand"
	"testing"
)

func testExchange(t *testing.T) *Exchange {
	t.Helper()
	data, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewExchange(data, rand.New(rand.NewSource(1)))
}

func TestLoadCatalogs(t *testing.T) {
	data, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.Commodities) == 0 || len(data.Locations) == 0 {
		t.Fatal("catalogs are empty")
	}
	for id, c := range data.Commodities {
		if c.Tier < 1 {
			t.Errorf("%s: tier %d", id, c.Tier)
		}
		if c.BasePriceMin <= 0 || c.BasePriceMax < c.BasePriceMin {
			t.Errorf("%s: base price range [%d, %d]", id, c.BasePriceMin, c.BasePriceMax)
		}
	}
	if data.CommodityName("water-ice") != "Water Ice" {
		t.Errorf("CommodityName(water-ice) = %q", data.CommodityName("water-ice"))
	}
	if data.LocationName("unknown") != "unknown" {
		t.Errorf("LocationName should fall back to the ID")
	}
}

func TestExchangeSeedsAllPairs(t *testing.T) {
	e := testExchange(t)
	for _, locID := range e.Data().LocationIDs {
		for _, comID := range e.Data().CommodityIDs {
			if e.GetPrice(locID, comID) <= 0 {
				t.Errorf("price(%s, %s) <= 0", locID, comID)
			}
			if e.Stock(locID, comID) <= 0 {
				t.Errorf("stock(%s, %s) <= 0", locID, comID)
			}
		}
	}
}

func TestOverrideWinsOnlyAtDealLocation(t *testing.T) {
	e := testExchange(t)
	base := e.GetPrice("ceres-station", "raw-ore")

	e.SetOverride(&DealOverride{LocationID: "ceres-station", CommodityID: "raw-ore", Price: 7})
	if got := e.GetPrice("ceres-station", "raw-ore"); got != 7 {
		t.Errorf("override price = %d, want 7", got)
	}
	if got := e.GetPrice("new-shanghai", "raw-ore"); got == 7 {
		t.Error("override leaked to another location")
	}
	if got := e.GetPrice("ceres-station", "water-ice"); got == 7 {
		t.Error("override leaked to another commodity")
	}

	e.ClearOverride()
	if got := e.GetPrice("ceres-station", "raw-ore"); got != base {
		t.Errorf("price after clear = %d, want %d", got, base)
	}
}

func TestGalacticAverageExcludesOverride(t *testing.T) {
	e := testExchange(t)
	before := e.GalacticAverage("ai-cores", 1)
	if before <= 0 {
		t.Fatalf("average = %v, want > 0", before)
	}

	e.SetOverride(&DealOverride{LocationID: "ceres-station", CommodityID: "ai-cores", Price: 1})
	after := e.GalacticAverage("ai-cores", 2)
	if math.Abs(after-before) > before*0.01 {
		t.Errorf("average moved from %v to %v when an override was installed", before, after)
	}
}

func TestGalacticAverageCachedPerDay(t *testing.T) {
	e := testExchange(t)
	day1 := e.GalacticAverage("raw-ore", 1)

	// Mutating stock-free prices through DriftTick should not change the
	// cached value for the same day, but a new day recomputes.
	e.DriftTick()
	if got := e.GalacticAverage("raw-ore", 1); got != day1 {
		t.Errorf("same-day average = %v, want cached %v", got, day1)
	}
	// Different day is allowed to differ; just assert it stays sane.
	if got := e.GalacticAverage("raw-ore", 2); got <= 0 {
		t.Errorf("next-day average = %v, want > 0", got)
	}
}

func TestStockAccounting(t *testing.T) {
	e := testExchange(t)
	start := e.Stock("port-kepler", "circuitry")

	e.AddStock("port-kepler", "circuitry", 25)
	if got := e.Stock("port-kepler", "circuitry"); got != start+25 {
		t.Errorf("after AddStock = %d, want %d", got, start+25)
	}
	if err := e.TakeStock("port-kepler", "circuitry", 5); err != nil {
		t.Fatalf("TakeStock: %v", err)
	}
	if got := e.Stock("port-kepler", "circuitry"); got != start+20 {
		t.Errorf("after TakeStock = %d, want %d", got, start+20)
	}
	if err := e.TakeStock("port-kepler", "circuitry", 1_000_000); err == nil {
		t.Error("TakeStock allowed overdraw")
	}
}

func TestDriftTickStaysPositive(t *testing.T) {
	e := testExchange(t)
	for i := 0; i < 200; i++ {
		e.DriftTick()
	}
	for _, locID := range e.Data().LocationIDs {
		for _, comID := range e.Data().CommodityIDs {
			if e.GetPrice(locID, comID) < 1 {
				t.Fatalf("price(%s, %s) < 1 after drift", locID, comID)
			}
			if e.Stock(locID, comID) < 0 {
				t.Fatalf("stock(%s, %s) < 0 after drift", locID, comID)
			}
		}
	}
}
