package intel

import (
	"math/rand"
	"testing"

	"star-broker/internal/state"
)

func newPricerStore(credits int64) *state.Store {
	st := state.NewSaveState()
	st.Player.Credits = credits
	return state.NewStore(st)
}

func TestParseMode(t *testing.T) {
	if _, err := ParseMode("stable"); err != nil {
		t.Errorf("ParseMode(stable): %v", err)
	}
	if _, err := ParseMode("flicker"); err != nil {
		t.Errorf("ParseMode(flicker): %v", err)
	}
	if _, err := ParseMode("dynamic"); err == nil {
		t.Error("ParseMode accepted an unknown mode")
	}
}

func TestQuoteIsMultipleOf100(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pr := NewPricer(newPricerStore(123_457), ModeFlicker, rng)
	p := &state.IntelPacket{DiscountPercent: 0.42, DurationDays: 77, PriceSeed: 0.17}

	for i := 0; i < 500; i++ {
		q := pr.Quote(p)
		if q < 0 {
			t.Fatalf("quote %d is negative", q)
		}
		if q%100 != 0 {
			t.Fatalf("quote %d is not a multiple of 100", q)
		}
	}
}

func TestQuoteZeroCredits(t *testing.T) {
	pr := NewPricer(newPricerStore(0), ModeStable, rand.New(rand.NewSource(1)))
	p := &state.IntelPacket{DiscountPercent: 0.50, DurationDays: 90, PriceSeed: 0.19}
	if q := pr.Quote(p); q != 0 {
		t.Errorf("quote at zero credits = %d, want 0", q)
	}
}

// With credits 10,000, discount 0.30, duration 60, every flicker quote must
// land in [2200, 4500] and on a hundred boundary.
func TestQuoteBoundsAtTenThousandCredits(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	pr := NewPricer(newPricerStore(10_000), ModeFlicker, rng)
	p := &state.IntelPacket{DiscountPercent: 0.30, DurationDays: 60, PriceSeed: 0.15}

	for i := 0; i < 2000; i++ {
		q := pr.Quote(p)
		if q < 2200 || q > 4500 {
			t.Fatalf("quote %d outside [2200, 4500]", q)
		}
		if q%100 != 0 {
			t.Fatalf("quote %d not rounded to hundreds", q)
		}
	}
}

func TestStableModeIsDeterministic(t *testing.T) {
	store := newPricerStore(10_000)
	pr := NewPricer(store, ModeStable, rand.New(rand.NewSource(3)))
	p := &state.IntelPacket{DiscountPercent: 0.30, DurationDays: 60, PriceSeed: 0.12}

	first := pr.Quote(p)
	for i := 0; i < 50; i++ {
		if q := pr.Quote(p); q != first {
			t.Fatalf("stable quote moved from %d to %d with no balance change", first, q)
		}
	}

	// The quote still tracks the live balance.
	_ = store.Commit(func(st *state.SaveState) error {
		st.Player.Credits = 20_000
		return nil
	})
	if q := pr.Quote(p); q == first {
		t.Errorf("stable quote ignored a doubled balance (still %d)", q)
	}
}

func TestFlickerModeVaries(t *testing.T) {
	pr := NewPricer(newPricerStore(1_000_000), ModeFlicker, rand.New(rand.NewSource(11)))
	p := &state.IntelPacket{DiscountPercent: 0.30, DurationDays: 60, PriceSeed: 0.15}

	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		seen[pr.Quote(p)] = true
	}
	if len(seen) < 2 {
		t.Error("flicker mode produced a single price across 100 quotes")
	}
}

func TestPriceBandOrdering(t *testing.T) {
	lo, hi := priceBand(10_000, 2.2666666667)
	if lo != 2200 || hi != 4500 {
		t.Errorf("priceBand = [%d, %d], want [2200, 4500]", lo, hi)
	}
	if lo > hi {
		t.Error("band inverted")
	}
}
