// Package market provides the commodity/location catalogs and the live
// per-location price and stock state the broker economy trades against.
package market

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed data/commodities.json data/locations.json
var dataFS embed.FS

// Commodity is a static catalog entry. Tier is the rarity bucket that
// controls how steeply the sell price decays under large sales.
type Commodity struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Tier         int    `json:"tier"`
	BasePriceMin int    `json:"base_price_min"`
	BasePriceMax int    `json:"base_price_max"`
}

// Location is a static catalog entry for a market location.
// WealthMod scales local prices around the commodity base range.
type Location struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	WealthMod float64 `json:"wealth_mod"`
}

// Data holds the parsed static catalogs.
type Data struct {
	Commodities  map[string]*Commodity
	Locations    map[string]*Location
	CommodityIDs []string // sorted
	LocationIDs  []string // sorted
}

// Load parses and validates the embedded catalogs. Malformed static data is
// a programmer error and aborts startup.
func Load() (*Data, error) {
	var commodities []*Commodity
	if err := loadJSON("data/commodities.json", &commodities); err != nil {
		return nil, err
	}
	var locations []*Location
	if err := loadJSON("data/locations.json", &locations); err != nil {
		return nil, err
	}
	if len(commodities) == 0 {
		return nil, fmt.Errorf("commodity catalog is empty")
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("location catalog is empty")
	}

	d := &Data{
		Commodities: make(map[string]*Commodity, len(commodities)),
		Locations:   make(map[string]*Location, len(locations)),
	}
	for _, c := range commodities {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("commodity with missing id/name: %+v", c)
		}
		if _, dup := d.Commodities[c.ID]; dup {
			return nil, fmt.Errorf("duplicate commodity %s", c.ID)
		}
		if c.Tier < 1 {
			return nil, fmt.Errorf("commodity %s: tier %d < 1", c.ID, c.Tier)
		}
		if c.BasePriceMin <= 0 || c.BasePriceMax < c.BasePriceMin {
			return nil, fmt.Errorf("commodity %s: bad base price range [%d, %d]", c.ID, c.BasePriceMin, c.BasePriceMax)
		}
		d.Commodities[c.ID] = c
		d.CommodityIDs = append(d.CommodityIDs, c.ID)
	}
	for _, l := range locations {
		if l.ID == "" || l.Name == "" {
			return nil, fmt.Errorf("location with missing id/name: %+v", l)
		}
		if _, dup := d.Locations[l.ID]; dup {
			return nil, fmt.Errorf("duplicate location %s", l.ID)
		}
		if l.WealthMod <= 0 {
			return nil, fmt.Errorf("location %s: wealth mod %v must be positive", l.ID, l.WealthMod)
		}
		d.Locations[l.ID] = l
		d.LocationIDs = append(d.LocationIDs, l.ID)
	}
	sort.Strings(d.CommodityIDs)
	sort.Strings(d.LocationIDs)
	return d, nil
}

func loadJSON(name string, v interface{}) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// CommodityName returns the display name, falling back to the ID.
func (d *Data) CommodityName(id string) string {
	if c, ok := d.Commodities[id]; ok {
		return c.Name
	}
	return id
}

// LocationName returns the display name, falling back to the ID.
func (d *Data) LocationName(id string) string {
	if l, ok := d.Locations[id]; ok {
		return l.Name
	}
	return id
}
