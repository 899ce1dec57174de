package intel

import (
	"fmt"
	"math"
	"math/rand"

	"star-broker/internal/content"
	"star-broker/internal/logger"
	"star-broker/internal/market"
	"star-broker/internal/notify"
	"star-broker/internal/state"
)

// DealService executes intel purchases and owns the single-active-deal
// invariant.
type DealService struct {
	store     *state.Store
	exchange  *market.Exchange
	catalog   *content.Catalog
	sink      notify.Sink
	day       func() int
	mode      Mode
	tolerance float64 // accepted relative deviation from the seed price
	rng       *rand.Rand
}

// NewDealService wires the purchase path.
func NewDealService(store *state.Store, exchange *market.Exchange, catalog *content.Catalog, sink notify.Sink, day func() int, mode Mode, tolerance float64, rng *rand.Rand) *DealService {
	if tolerance < 0 {
		tolerance = 0
	}
	return &DealService{
		store:     store,
		exchange:  exchange,
		catalog:   catalog,
		sink:      sink,
		day:       day,
		mode:      mode,
		tolerance: tolerance,
		rng:       rng,
	}
}

// Purchase buys the packet identified by (packetID, offerLocationID) for
// proposedPrice. Guards run in a fixed order and any failure rejects the
// call with a sentinel error, leaving all state unchanged:
//
//  1. no deal is currently active
//  2. the packet still exists, re-resolved from current state
//  3. proposedPrice survives seed verification
//  4. the player can afford it
//
// On success the debit, the purchased flag, and the new active deal commit
// together; the market override and the flavor notification follow, the
// latter strictly best-effort.
func (ds *DealService) Purchase(packetID, offerLocationID string, proposedPrice int) (*state.IntelPacket, error) {
	var (
		purchased *state.IntelPacket
		deal      state.ActiveIntelDeal
	)
	err := ds.store.Commit(func(st *state.SaveState) error {
		if st.ActiveDeal != nil {
			return ErrDealActive
		}
		p := st.FindPacket(offerLocationID, packetID)
		if p == nil || p.Purchased {
			// Purchased packets persist in the listings but are no longer
			// offers; treat a retry against one the same as a pruned packet.
			return ErrPacketNotFound
		}
		if err := ds.verifyPrice(p, st.Player.Credits, proposedPrice); err != nil {
			return err
		}
		if st.Player.Credits < int64(proposedPrice) {
			return ErrInsufficientFunds
		}

		day := ds.day()
		avg := ds.exchange.GalacticAverage(p.CommodityID, day)
		st.Player.Credits -= int64(proposedPrice)
		p.Purchased = true
		st.ActiveDeal = &state.ActiveIntelDeal{
			DealLocationID: p.DealLocationID,
			CommodityID:    p.CommodityID,
			OverridePrice:  int(math.Floor(avg * (1 - p.DiscountPercent))),
			ExpiryDay:      day + p.DurationDays,
			SourcePacketID: p.ID,
		}
		deal = *st.ActiveDeal
		purchased = p.Clone()
		return nil
	})
	if err != nil {
		logger.Warn("DEALS", fmt.Sprintf("purchase of %s at %s rejected: %v", packetID, offerLocationID, err))
		return nil, err
	}

	ds.exchange.SetOverride(&market.DealOverride{
		LocationID:  deal.DealLocationID,
		CommodityID: deal.CommodityID,
		Price:       deal.OverridePrice,
	})
	logger.Success("DEALS", fmt.Sprintf("intel %s purchased for ⌬%d: %s at %s pegged to ⌬%d until day %d",
		purchased.ID, proposedPrice, deal.CommodityID, deal.DealLocationID, deal.OverridePrice, deal.ExpiryDay))

	ds.pushFlavor(purchased, proposedPrice)
	return purchased, nil
}

// verifyPrice checks the caller-supplied price against what the packet's
// seed and the live balance allow. In stable mode the seed price is the
// canonical charge, give or take the configured tolerance. In flicker mode
// any price inside the full seed band is accepted, since the render the
// player acted on drew its own randomness.
func (ds *DealService) verifyPrice(p *state.IntelPacket, credits int64, proposed int) error {
	if proposed < 0 {
		return ErrPriceMismatch
	}
	vm := p.ValueMultiplier()
	if ds.mode == ModeFlicker {
		lo, hi := priceBand(credits, vm)
		if proposed < lo || proposed > hi {
			return ErrPriceMismatch
		}
		return nil
	}
	canonical := priceFor(credits, p.PriceSeed, vm)
	if canonical == 0 {
		if proposed != 0 {
			return ErrPriceMismatch
		}
		return nil
	}
	if math.Abs(float64(proposed-canonical)) > ds.tolerance*float64(canonical) {
		return ErrPriceMismatch
	}
	return nil
}

// pushFlavor formats and delivers the purchase message. Failures are logged
// and swallowed; the committed purchase stands regardless.
func (ds *DealService) pushFlavor(p *state.IntelPacket, price int) {
	keys := ds.catalog.Keys()
	if len(keys) == 0 {
		return
	}
	tpl, ok := ds.catalog.Get(keys[ds.rng.Intn(len(keys))])
	if !ok {
		return
	}
	data := ds.exchange.Data()
	text := content.Format(tpl.Sample, content.Subst{
		LocationName:    data.LocationName(p.DealLocationID),
		CommodityName:   data.CommodityName(p.CommodityID),
		DiscountPercent: p.DiscountPercent,
		DurationDays:    p.DurationDays,
		Price:           price,
	})
	if err := ds.sink.Push(text, "intel", true); err != nil {
		logger.Warn("NOTIFY", fmt.Sprintf("flavor message dropped: %v", err))
	}
}

// ExpireDeal clears the active deal once day has reached its expiry,
// removing the market override with it. Returns true if a deal was cleared.
// Owned by the day-advance driver, not the purchase path.
func ExpireDeal(store *state.Store, exchange *market.Exchange, day int) bool {
	cleared := false
	_ = store.Commit(func(st *state.SaveState) error {
		if st.ActiveDeal != nil && day >= st.ActiveDeal.ExpiryDay {
			st.ActiveDeal = nil
			cleared = true
		}
		return nil
	})
	if cleared {
		exchange.ClearOverride()
		logger.Info("DEALS", fmt.Sprintf("intel deal expired on day %d", day))
	}
	return cleared
}

// SyncOverride re-installs the market override for a restored active deal.
// Called after loading a save.
func SyncOverride(store *state.Store, exchange *market.Exchange) {
	store.View(func(st *state.SaveState) {
		if st.ActiveDeal == nil {
			exchange.ClearOverride()
			return
		}
		exchange.SetOverride(&market.DealOverride{
			LocationID:  st.ActiveDeal.DealLocationID,
			CommodityID: st.ActiveDeal.CommodityID,
			Price:       st.ActiveDeal.OverridePrice,
		})
	})
}
