package trade

import (
	"errors"
	"fmt"

	"star-broker/internal/logger"
	"star-broker/internal/market"
	"star-broker/internal/state"
)

// ErrUnknownCommodity rejects trades against a commodity ID missing from
// the static catalog. Callers can branch on it with errors.Is.
var ErrUnknownCommodity = errors.New("unknown commodity")

// Service quotes and executes commodity trades at the player's location.
type Service struct {
	store    *state.Store
	exchange *market.Exchange
}

// NewService wires the trade paths over the shared store and exchange.
func NewService(store *state.Store, exchange *market.Exchange) *Service {
	return &Service{store: store, exchange: exchange}
}

// QuoteSale prices selling quantity units of a commodity at the player's
// current location, using the intel-aware sell price and live stock.
func (s *Service) QuoteSale(commodityID string, quantity int) (SaleDetails, error) {
	c, ok := s.exchange.Data().Commodities[commodityID]
	if !ok {
		return SaleDetails{}, fmt.Errorf("%w %q", ErrUnknownCommodity, commodityID)
	}

	var in SaleInputs
	s.store.View(func(st *state.SaveState) {
		loc := st.Player.CurrentLocationID
		in = SaleInputs{
			Stock:     s.exchange.Stock(loc, commodityID),
			Tier:      c.Tier,
			BasePrice: s.exchange.GetPrice(loc, commodityID),
			AvgCost:   st.Player.AvgCost[commodityID],
			BonusSum:  st.Player.BonusSum(),
			Quantity:  quantity,
		}
	})
	return QuoteSale(in), nil
}

// ExecuteSale sells quantity units at the player's location: the inventory
// shrinks, the local market absorbs the units, and the wallet gains the
// total plus any profit-bonus uplift. The quote is computed inside the
// commit so interleaved requests cannot price a sale against stale stock.
func (s *Service) ExecuteSale(commodityID string, quantity int) (SaleDetails, error) {
	if quantity <= 0 {
		return SaleDetails{}, fmt.Errorf("quantity %d must be positive", quantity)
	}
	c, ok := s.exchange.Data().Commodities[commodityID]
	if !ok {
		return SaleDetails{}, fmt.Errorf("%w %q", ErrUnknownCommodity, commodityID)
	}

	var (
		details  SaleDetails
		location string
	)
	err := s.store.Commit(func(st *state.SaveState) error {
		if st.Player.Inventory[commodityID] < quantity {
			return fmt.Errorf("inventory %d < %d", st.Player.Inventory[commodityID], quantity)
		}
		loc := st.Player.CurrentLocationID
		details = QuoteSale(SaleInputs{
			Stock:     s.exchange.Stock(loc, commodityID),
			Tier:      c.Tier,
			BasePrice: s.exchange.GetPrice(loc, commodityID),
			AvgCost:   st.Player.AvgCost[commodityID],
			BonusSum:  st.Player.BonusSum(),
			Quantity:  quantity,
		})
		if details.TotalPrice <= 0 {
			return fmt.Errorf("no market for %s here", commodityID)
		}
		proceeds := int64(details.TotalPrice)
		// Positive profit bonuses pay out on top of the sale total.
		rawNet := float64(details.TotalPrice) - st.Player.AvgCost[commodityID]*float64(quantity)
		if uplift := details.NetProfit - rawNet; uplift > 0 {
			proceeds += int64(uplift)
		}
		st.Player.Inventory[commodityID] -= quantity
		st.Player.Credits += proceeds
		location = loc
		return nil
	})
	if err != nil {
		logger.Warn("TRADE", fmt.Sprintf("sale of %dx %s rejected: %v", quantity, commodityID, err))
		return SaleDetails{}, err
	}

	s.exchange.AddStock(location, commodityID, quantity)
	logger.Info("TRADE", fmt.Sprintf("sold %dx %s for ⌬%d (%.1f/unit)",
		quantity, commodityID, details.TotalPrice, details.EffectivePricePerUnit))
	return details, nil
}

// ExecuteBuy purchases quantity units at the intel-aware local price,
// updating the player's weighted average acquisition cost.
func (s *Service) ExecuteBuy(commodityID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity %d must be positive", quantity)
	}
	if _, ok := s.exchange.Data().Commodities[commodityID]; !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownCommodity, commodityID)
	}

	var (
		location string
		cost     int
	)
	err := s.store.Commit(func(st *state.SaveState) error {
		loc := st.Player.CurrentLocationID
		price := s.exchange.GetPrice(loc, commodityID)
		if price <= 0 {
			return fmt.Errorf("no market for %s at %s", commodityID, loc)
		}
		if s.exchange.Stock(loc, commodityID) < quantity {
			return fmt.Errorf("market stock below %d", quantity)
		}
		total := price * quantity
		if st.Player.Credits < int64(total) {
			return fmt.Errorf("insufficient credits: need ⌬%d", total)
		}

		held := st.Player.Inventory[commodityID]
		prevCost := st.Player.AvgCost[commodityID]
		st.Player.AvgCost[commodityID] = (prevCost*float64(held) + float64(total)) / float64(held+quantity)
		st.Player.Inventory[commodityID] = held + quantity
		st.Player.Credits -= int64(total)
		location = loc
		cost = total
		return nil
	})
	if err != nil {
		logger.Warn("TRADE", fmt.Sprintf("buy of %dx %s rejected: %v", quantity, commodityID, err))
		return 0, err
	}

	if err := s.exchange.TakeStock(location, commodityID, quantity); err != nil {
		// Stock was checked inside the commit; only a concurrent
		// withdrawal between commit and here can trip this.
		logger.Error("TRADE", fmt.Sprintf("stock withdrawal desynced: %v", err))
	}
	logger.Info("TRADE", fmt.Sprintf("bought %dx %s for ⌬%d", quantity, commodityID, cost))
	return cost, nil
}
