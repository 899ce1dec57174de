package intel

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"star-broker/internal/content"
	"star-broker/internal/logger"
	"star-broker/internal/market"
	"star-broker/internal/state"
)

// GenParams bound the procedural generation draws.
type GenParams struct {
	Chance      float64 // per-location chance of generating packets
	MinPackets  int
	MaxPackets  int
	MinDiscount float64
	MaxDiscount float64
	MinDuration int // days, inclusive
	MaxDuration int
}

// DefaultGenParams returns the canonical generation tuning.
func DefaultGenParams() GenParams {
	return GenParams{
		Chance:      0.70,
		MinPackets:  1,
		MaxPackets:  3,
		MinDiscount: 0.15,
		MaxDiscount: 0.50,
		MinDuration: 30,
		MaxDuration: 90,
	}
}

// Validate rejects parameter sets the generator cannot sample from.
func (p GenParams) Validate() error {
	if p.Chance < 0 || p.Chance > 1 {
		return fmt.Errorf("chance %v outside [0, 1]", p.Chance)
	}
	if p.MinPackets < 1 || p.MaxPackets < p.MinPackets {
		return fmt.Errorf("packet count range [%d, %d] invalid", p.MinPackets, p.MaxPackets)
	}
	if p.MinDiscount <= 0 || p.MaxDiscount < p.MinDiscount || p.MaxDiscount >= 1 {
		return fmt.Errorf("discount range [%v, %v] invalid", p.MinDiscount, p.MaxDiscount)
	}
	if p.MinDuration < 1 || p.MaxDuration < p.MinDuration {
		return fmt.Errorf("duration range [%d, %d] invalid", p.MinDuration, p.MaxDuration)
	}
	return nil
}

// Generator creates and prunes intel packets on each clock-driven refresh.
type Generator struct {
	store   *state.Store
	data    *market.Data
	catalog *content.Catalog
	params  GenParams
	rng     *rand.Rand
	day     func() int
}

// NewGenerator wires a generator over the shared state store.
func NewGenerator(store *state.Store, data *market.Data, catalog *content.Catalog, params GenParams, rng *rand.Rand, day func() int) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("generation params: %w", err)
	}
	return &Generator{store: store, data: data, catalog: catalog, params: params, rng: rng, day: day}, nil
}

// Refresh replaces the intel market in one atomic commit: purchased packets
// survive, everything unpurchased is discarded, and each known location
// independently rolls for 1–3 new packets.
//
// An empty unlocked-commodity set or an empty catalog downgrades generation
// to a warned no-op per location; the prune still happens and the refresh
// never errors for these cases.
func (g *Generator) Refresh() {
	day := g.day()
	keys := g.catalog.Keys()

	var created, kept int
	_ = g.store.Commit(func(st *state.SaveState) error {
		next := make(map[string][]*state.IntelPacket, len(g.data.LocationIDs))

		for loc, packets := range st.IntelMarket {
			for _, p := range packets {
				if p.Purchased {
					next[loc] = append(next[loc], p)
					kept++
				}
			}
		}

		for _, locID := range g.data.LocationIDs {
			if len(st.Player.Unlocked) == 0 {
				logger.Warn("INTEL", fmt.Sprintf("no unlocked commodities, skipping generation at %s", locID))
				continue
			}
			if len(keys) == 0 {
				logger.Warn("INTEL", fmt.Sprintf("message catalog empty, skipping generation at %s", locID))
				continue
			}
			if g.rng.Float64() >= g.params.Chance {
				continue
			}
			n := g.params.MinPackets + g.rng.Intn(g.params.MaxPackets-g.params.MinPackets+1)
			for i := 0; i < n; i++ {
				next[locID] = append(next[locID], g.newPacket(locID, day, st.Player.Unlocked, keys))
				created++
			}
		}

		st.IntelMarket = next
		return nil
	})

	logger.Info("INTEL", fmt.Sprintf("refresh on day %d: %d new packets, %d purchased retained", day, created, kept))
}

// newPacket samples one offer. The deal location is drawn independently of
// the offer location: a broker at one port sells intel about another.
func (g *Generator) newPacket(offerLocationID string, day int, unlocked, keys []string) *state.IntelPacket {
	dealLocationID := g.data.LocationIDs[g.rng.Intn(len(g.data.LocationIDs))]
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return &state.IntelPacket{
		ID:              fmt.Sprintf("%s-%d-%s", offerLocationID, day, suffix),
		OfferLocationID: offerLocationID,
		DealLocationID:  dealLocationID,
		CommodityID:     unlocked[g.rng.Intn(len(unlocked))],
		DiscountPercent: g.params.MinDiscount + g.rng.Float64()*(g.params.MaxDiscount-g.params.MinDiscount),
		DurationDays:    g.params.MinDuration + g.rng.Intn(g.params.MaxDuration-g.params.MinDuration+1),
		MessageKey:      keys[g.rng.Intn(len(keys))],
		PriceSeed:       seedMin + g.rng.Float64()*(seedMax-seedMin),
	}
}
