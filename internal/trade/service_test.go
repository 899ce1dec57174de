package trade

import (
	"errors"
	"math/rand"
	"testing"

	"star-broker/internal/market"
	"star-broker/internal/state"
)

func newTradeFixture(t *testing.T) (*Service, *state.Store, *market.Exchange) {
	t.Helper()
	data, err := market.Load()
	if err != nil {
		t.Fatalf("market.Load: %v", err)
	}
	ex := market.NewExchange(data, rand.New(rand.NewSource(9)))
	st := state.NewSaveState()
	st.Player.Credits = 50_000
	st.Player.CurrentLocationID = "ceres-station"
	store := state.NewStore(st)
	return NewService(store, ex), store, ex
}

func TestQuoteSaleUsesLiveMarket(t *testing.T) {
	svc, store, ex := newTradeFixture(t)
	_ = store.Commit(func(st *state.SaveState) error {
		st.Player.AvgCost["raw-ore"] = 5
		return nil
	})

	stock := ex.Stock("ceres-station", "raw-ore")
	price := ex.GetPrice("ceres-station", "raw-ore")
	qty := stock / 20 // safely below the 10% threshold

	got, err := svc.QuoteSale("raw-ore", qty)
	if err != nil {
		t.Fatalf("QuoteSale: %v", err)
	}
	if got.TotalPrice != price*qty {
		t.Errorf("total = %d, want %d (no impact below threshold)", got.TotalPrice, price*qty)
	}

	if _, err := svc.QuoteSale("unobtainium", 1); !errors.Is(err, ErrUnknownCommodity) {
		t.Errorf("QuoteSale error = %v, want ErrUnknownCommodity", err)
	}
	if _, err := svc.ExecuteSale("unobtainium", 1); !errors.Is(err, ErrUnknownCommodity) {
		t.Errorf("ExecuteSale error = %v, want ErrUnknownCommodity", err)
	}
	if _, err := svc.ExecuteBuy("unobtainium", 1); !errors.Is(err, ErrUnknownCommodity) {
		t.Errorf("ExecuteBuy error = %v, want ErrUnknownCommodity", err)
	}
}

func TestExecuteSaleMovesEverything(t *testing.T) {
	svc, store, ex := newTradeFixture(t)
	_ = store.Commit(func(st *state.SaveState) error {
		st.Player.Inventory["raw-ore"] = 100
		st.Player.AvgCost["raw-ore"] = 5
		return nil
	})

	startStock := ex.Stock("ceres-station", "raw-ore")
	startCredits := store.Credits()

	details, err := svc.ExecuteSale("raw-ore", 40)
	if err != nil {
		t.Fatalf("ExecuteSale: %v", err)
	}
	if details.TotalPrice <= 0 {
		t.Fatal("sale produced no proceeds")
	}

	store.View(func(st *state.SaveState) {
		if st.Player.Inventory["raw-ore"] != 60 {
			t.Errorf("inventory = %d, want 60", st.Player.Inventory["raw-ore"])
		}
		if st.Player.Credits < startCredits+int64(details.TotalPrice) {
			t.Errorf("credits = %d, want at least %d", st.Player.Credits, startCredits+int64(details.TotalPrice))
		}
	})
	if got := ex.Stock("ceres-station", "raw-ore"); got != startStock+40 {
		t.Errorf("market stock = %d, want %d", got, startStock+40)
	}
}

// A sale is priced against the market as it stands when the commit runs,
// not against any earlier quote: shrinking the stock between quote and
// execution deepens the impact the executed sale pays.
func TestExecuteSalePricesAtCommitTime(t *testing.T) {
	svc, store, ex := newTradeFixture(t)
	_ = store.Commit(func(st *state.SaveState) error {
		st.Player.Inventory["raw-ore"] = 2000
		return nil
	})

	stock := ex.Stock("ceres-station", "raw-ore")
	qty := stock / 2 // well above the 10% impact threshold
	stale, err := svc.QuoteSale("raw-ore", qty)
	if err != nil {
		t.Fatalf("QuoteSale: %v", err)
	}

	// Half the stock drains before the sale lands.
	if err := ex.TakeStock("ceres-station", "raw-ore", stock/2); err != nil {
		t.Fatalf("TakeStock: %v", err)
	}
	fresh, err := svc.QuoteSale("raw-ore", qty)
	if err != nil {
		t.Fatalf("QuoteSale: %v", err)
	}
	if fresh.TotalPrice >= stale.TotalPrice {
		t.Fatalf("draining stock did not deepen impact: fresh %d, stale %d", fresh.TotalPrice, stale.TotalPrice)
	}

	startCredits := store.Credits()
	details, err := svc.ExecuteSale("raw-ore", qty)
	if err != nil {
		t.Fatalf("ExecuteSale: %v", err)
	}
	if details.TotalPrice != fresh.TotalPrice {
		t.Errorf("executed total = %d, want live quote %d", details.TotalPrice, fresh.TotalPrice)
	}
	if got := store.Credits(); got != startCredits+int64(details.TotalPrice) {
		t.Errorf("credits moved by %d, want %d", got-startCredits, details.TotalPrice)
	}
}

func TestExecuteSaleRejectsOverdraw(t *testing.T) {
	svc, store, _ := newTradeFixture(t)
	_ = store.Commit(func(st *state.SaveState) error {
		st.Player.Inventory["raw-ore"] = 5
		return nil
	})

	if _, err := svc.ExecuteSale("raw-ore", 10); err == nil {
		t.Fatal("sale of more than held accepted")
	}
	store.View(func(st *state.SaveState) {
		if st.Player.Inventory["raw-ore"] != 5 || st.Player.Credits != 50_000 {
			t.Error("rejected sale mutated state")
		}
	})
}

func TestExecuteBuyUpdatesAverageCost(t *testing.T) {
	svc, store, ex := newTradeFixture(t)
	price := ex.GetPrice("ceres-station", "raw-ore")

	cost, err := svc.ExecuteBuy("raw-ore", 10)
	if err != nil {
		t.Fatalf("ExecuteBuy: %v", err)
	}
	if cost != price*10 {
		t.Errorf("cost = %d, want %d", cost, price*10)
	}

	store.View(func(st *state.SaveState) {
		if st.Player.Inventory["raw-ore"] != 10 {
			t.Errorf("inventory = %d, want 10", st.Player.Inventory["raw-ore"])
		}
		if st.Player.AvgCost["raw-ore"] != float64(price) {
			t.Errorf("avg cost = %v, want %v", st.Player.AvgCost["raw-ore"], price)
		}
		if st.Player.Credits != 50_000-int64(cost) {
			t.Errorf("credits = %d", st.Player.Credits)
		}
	})

	if _, err := svc.ExecuteBuy("raw-ore", 10_000_000); err == nil {
		t.Error("buy beyond market stock accepted")
	}
}
