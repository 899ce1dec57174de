package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"star-broker/internal/state"
)

// SaveSnapshot writes the full save state and day count in one transaction,
// replacing whatever was stored before.
func (d *DB) SaveSnapshot(st state.SaveState, day int) error {
	unlocked, err := json.Marshal(st.Player.Unlocked)
	if err != nil {
		return fmt.Errorf("marshal unlocked: %w", err)
	}
	inventory, err := json.Marshal(st.Player.Inventory)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}
	avgCost, err := json.Marshal(st.Player.AvgCost)
	if err != nil {
		return fmt.Errorf("marshal avg cost: %w", err)
	}
	bonuses, err := json.Marshal(st.Player.ProfitBonuses)
	if err != nil {
		return fmt.Errorf("marshal bonuses: %w", err)
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO player (id, credits, location, unlocked, inventory, avg_cost, bonuses)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			credits = excluded.credits,
			location = excluded.location,
			unlocked = excluded.unlocked,
			inventory = excluded.inventory,
			avg_cost = excluded.avg_cost,
			bonuses = excluded.bonuses
	`, st.Player.Credits, st.Player.CurrentLocationID, string(unlocked), string(inventory), string(avgCost), string(bonuses)); err != nil {
		return fmt.Errorf("save player: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM intel_packets`); err != nil {
		return err
	}
	for _, packets := range st.IntelMarket {
		for _, p := range packets {
			if _, err := tx.Exec(`
				INSERT INTO intel_packets (id, offer_location, deal_location, commodity, discount, duration, message_key, price_seed, purchased)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, p.ID, p.OfferLocationID, p.DealLocationID, p.CommodityID, p.DiscountPercent, p.DurationDays, p.MessageKey, p.PriceSeed, boolToInt(p.Purchased)); err != nil {
				return fmt.Errorf("save packet %s: %w", p.ID, err)
			}
		}
	}

	if _, err := tx.Exec(`DELETE FROM active_deal`); err != nil {
		return err
	}
	if deal := st.ActiveDeal; deal != nil {
		if _, err := tx.Exec(`
			INSERT INTO active_deal (id, deal_location, commodity, override_price, expiry_day, source_packet)
			VALUES (1, ?, ?, ?, ?, ?)
		`, deal.DealLocationID, deal.CommodityID, deal.OverridePrice, deal.ExpiryDay, deal.SourcePacketID); err != nil {
			return fmt.Errorf("save active deal: %w", err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO clock (id, day) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET day = excluded.day
	`, day); err != nil {
		return fmt.Errorf("save clock: %w", err)
	}

	return tx.Commit()
}

// LoadSnapshot restores the save state and day count. The third return is
// false when no save exists yet.
func (d *DB) LoadSnapshot() (state.SaveState, int, bool, error) {
	st := state.NewSaveState()

	var (
		unlocked, inventory, avgCost, bonuses string
	)
	err := d.sql.QueryRow(`
		SELECT credits, location, unlocked, inventory, avg_cost, bonuses FROM player WHERE id = 1
	`).Scan(&st.Player.Credits, &st.Player.CurrentLocationID, &unlocked, &inventory, &avgCost, &bonuses)
	if err == sql.ErrNoRows {
		return st, 0, false, nil
	}
	if err != nil {
		return st, 0, false, fmt.Errorf("load player: %w", err)
	}
	if err := json.Unmarshal([]byte(unlocked), &st.Player.Unlocked); err != nil {
		return st, 0, false, fmt.Errorf("decode unlocked: %w", err)
	}
	if err := json.Unmarshal([]byte(inventory), &st.Player.Inventory); err != nil {
		return st, 0, false, fmt.Errorf("decode inventory: %w", err)
	}
	if err := json.Unmarshal([]byte(avgCost), &st.Player.AvgCost); err != nil {
		return st, 0, false, fmt.Errorf("decode avg cost: %w", err)
	}
	if err := json.Unmarshal([]byte(bonuses), &st.Player.ProfitBonuses); err != nil {
		return st, 0, false, fmt.Errorf("decode bonuses: %w", err)
	}

	rows, err := d.sql.Query(`
		SELECT id, offer_location, deal_location, commodity, discount, duration, message_key, price_seed, purchased
		  FROM intel_packets
	`)
	if err != nil {
		return st, 0, false, fmt.Errorf("load packets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			p         state.IntelPacket
			purchased int
		)
		if err := rows.Scan(&p.ID, &p.OfferLocationID, &p.DealLocationID, &p.CommodityID,
			&p.DiscountPercent, &p.DurationDays, &p.MessageKey, &p.PriceSeed, &purchased); err != nil {
			return st, 0, false, fmt.Errorf("scan packet: %w", err)
		}
		p.Purchased = purchased != 0
		st.IntelMarket[p.OfferLocationID] = append(st.IntelMarket[p.OfferLocationID], &p)
	}
	if err := rows.Err(); err != nil {
		return st, 0, false, err
	}

	var deal state.ActiveIntelDeal
	err = d.sql.QueryRow(`
		SELECT deal_location, commodity, override_price, expiry_day, source_packet FROM active_deal WHERE id = 1
	`).Scan(&deal.DealLocationID, &deal.CommodityID, &deal.OverridePrice, &deal.ExpiryDay, &deal.SourcePacketID)
	if err == nil {
		st.ActiveDeal = &deal
	} else if err != sql.ErrNoRows {
		return st, 0, false, fmt.Errorf("load active deal: %w", err)
	}

	var day int
	if err := d.sql.QueryRow(`SELECT day FROM clock WHERE id = 1`).Scan(&day); err != nil && err != sql.ErrNoRows {
		return st, 0, false, fmt.Errorf("load clock: %w", err)
	}

	st.Normalize()
	if err := st.Validate(); err != nil {
		return st, 0, false, fmt.Errorf("saved state invalid: %w", err)
	}
	return st, day, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
