// Package state holds the mutable game-side state the broker economy runs
// against: the player wallet, the per-location intel listings, and the single
// active deal. All mutation goes through Store so every operation lands as
// one atomic commit.
package state

import "fmt"

// IntelPacket is a generated, possibly-purchasable offer describing a
// temporary commodity price anomaly.
//
// OfferLocationID is where the packet is listed (it keys the intel market
// map). DealLocationID is where the discounted price applies once purchased;
// the two may differ.
type IntelPacket struct {
	ID              string  `json:"id"`
	OfferLocationID string  `json:"offer_location_id"`
	DealLocationID  string  `json:"deal_location_id"`
	CommodityID     string  `json:"commodity_id"`
	DiscountPercent float64 `json:"discount_percent"` // [0.15, 0.50]
	DurationDays    int     `json:"duration_days"`    // [30, 90]
	MessageKey      string  `json:"message_key"`
	PriceSeed       float64 `json:"price_seed"` // [0.10, 0.20), fixed at generation
	Purchased       bool    `json:"purchased"`  // monotonic false -> true
}

// ValueMultiplier derives the display-price scalar from discount and duration.
// Range is roughly [1.63, 3.0].
func (p *IntelPacket) ValueMultiplier() float64 {
	return 1.0 + p.DiscountPercent*2 + float64(p.DurationDays)/90.0
}

// Clone returns a copy of the packet.
func (p *IntelPacket) Clone() *IntelPacket {
	cp := *p
	return &cp
}

// ActiveIntelDeal is the single live price override. At most one exists
// globally; it is created by a successful purchase and cleared by the
// day-advance driver once CurrentDay >= ExpiryDay.
type ActiveIntelDeal struct {
	DealLocationID string `json:"deal_location_id"`
	CommodityID    string `json:"commodity_id"`
	OverridePrice  int    `json:"override_price"`
	ExpiryDay      int    `json:"expiry_day"`
	SourcePacketID string `json:"source_packet_id"`
}

// Player is the wallet-side state the broker reads and debits.
type Player struct {
	Credits           int64              `json:"credits"`
	CurrentLocationID string             `json:"current_location_id"`
	Unlocked          []string           `json:"unlocked"` // tradeable commodity IDs
	Inventory         map[string]int     `json:"inventory"`
	AvgCost           map[string]float64 `json:"avg_cost"`       // per-unit average acquisition cost
	ProfitBonuses     []float64          `json:"profit_bonuses"` // additive fractions, e.g. 0.05
}

// BonusSum returns the stacked profit bonus fraction.
func (p *Player) BonusSum() float64 {
	var sum float64
	for _, b := range p.ProfitBonuses {
		sum += b
	}
	return sum
}

// HasUnlocked reports whether the commodity is in the player's unlocked set.
func (p *Player) HasUnlocked(commodityID string) bool {
	for _, id := range p.Unlocked {
		if id == commodityID {
			return true
		}
	}
	return false
}

// SaveState is the persisted slice of the world the broker owns.
type SaveState struct {
	Player      Player                    `json:"player"`
	IntelMarket map[string][]*IntelPacket `json:"intel_market"` // offer location ID -> listings
	ActiveDeal  *ActiveIntelDeal          `json:"active_deal"`
}

// FindPacket resolves a packet by identity from the current listings.
// Returns nil when no such packet is listed at the location.
func (st *SaveState) FindPacket(offerLocationID, packetID string) *IntelPacket {
	for _, p := range st.IntelMarket[offerLocationID] {
		if p.ID == packetID {
			return p
		}
	}
	return nil
}

// Clone deep-copies the save state.
func (st *SaveState) Clone() SaveState {
	cp := *st
	cp.Player.Unlocked = append([]string(nil), st.Player.Unlocked...)
	cp.Player.ProfitBonuses = append([]float64(nil), st.Player.ProfitBonuses...)
	cp.Player.Inventory = make(map[string]int, len(st.Player.Inventory))
	for k, v := range st.Player.Inventory {
		cp.Player.Inventory[k] = v
	}
	cp.Player.AvgCost = make(map[string]float64, len(st.Player.AvgCost))
	for k, v := range st.Player.AvgCost {
		cp.Player.AvgCost[k] = v
	}
	cp.IntelMarket = make(map[string][]*IntelPacket, len(st.IntelMarket))
	for loc, packets := range st.IntelMarket {
		list := make([]*IntelPacket, len(packets))
		for i, p := range packets {
			list[i] = p.Clone()
		}
		cp.IntelMarket[loc] = list
	}
	if st.ActiveDeal != nil {
		deal := *st.ActiveDeal
		cp.ActiveDeal = &deal
	}
	return cp
}

// NewSaveState returns an empty state with all maps initialized.
func NewSaveState() SaveState {
	return SaveState{
		Player: Player{
			Inventory: make(map[string]int),
			AvgCost:   make(map[string]float64),
		},
		IntelMarket: make(map[string][]*IntelPacket),
	}
}

// Normalize ensures all maps are non-nil (e.g. after JSON decoding).
func (st *SaveState) Normalize() {
	if st.Player.Inventory == nil {
		st.Player.Inventory = make(map[string]int)
	}
	if st.Player.AvgCost == nil {
		st.Player.AvgCost = make(map[string]float64)
	}
	if st.IntelMarket == nil {
		st.IntelMarket = make(map[string][]*IntelPacket)
	}
}

// Validate checks cross-field invariants after a load.
func (st *SaveState) Validate() error {
	seen := make(map[string]bool)
	for loc, packets := range st.IntelMarket {
		for _, p := range packets {
			if p.ID == "" {
				return fmt.Errorf("packet without ID listed at %s", loc)
			}
			if seen[p.ID] {
				return fmt.Errorf("duplicate packet ID %s", p.ID)
			}
			seen[p.ID] = true
			if p.OfferLocationID != loc {
				return fmt.Errorf("packet %s listed at %s but offer location is %s", p.ID, loc, p.OfferLocationID)
			}
		}
	}
	if st.Player.Credits < 0 {
		return fmt.Errorf("negative credit balance %d", st.Player.Credits)
	}
	return nil
}
