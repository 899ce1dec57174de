package intel

import (
	"fmt"
	"math"
	"math/rand"

	"star-broker/internal/state"
)

// Mode selects how the displayed intel price is derived.
type Mode string

const (
	// ModeStable prices a packet from the seed fixed at generation time, so
	// the quote only moves when the player's balance does.
	ModeStable Mode = "stable"
	// ModeFlicker reproduces the legacy behavior: a fresh random draw on
	// every quote, so the displayed price can change between renders of the
	// same unpurchased offer. Deliberate; see the purchase price band check.
	ModeFlicker Mode = "flicker"
)

// ParseMode validates a configured pricing mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStable, ModeFlicker:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown pricing mode %q (want stable or flicker)", s)
	}
}

// Seed draw bounds for the wallet fraction u.
const (
	seedMin = 0.10
	seedMax = 0.20
)

// priceFor converts a wallet fraction and value multiplier into a display
// price: floor(credits·u·multiplier/100)·100. Always a non-negative
// multiple of 100.
func priceFor(credits int64, u, multiplier float64) int {
	if credits <= 0 {
		return 0
	}
	base := float64(credits) * u
	return int(floorGuarded(base*multiplier/100.0)) * 100
}

// floorGuarded floors x with a relative epsilon so values that land exactly
// on an integer boundary don't drop a whole unit to float dust
// (e.g. 34.0 computed as 33.999999999999996).
func floorGuarded(x float64) float64 {
	return math.Floor(x + math.Abs(x)*1e-12 + 1e-9)
}

// priceBand returns the lowest and highest price reachable for a packet at
// the given balance across the whole seed range.
func priceBand(credits int64, multiplier float64) (lo, hi int) {
	return priceFor(credits, seedMin, multiplier), priceFor(credits, seedMax, multiplier)
}

// Pricer quotes display prices for intel packets against the live wallet.
type Pricer struct {
	store *state.Store
	mode  Mode
	rng   *rand.Rand
}

// NewPricer creates a pricer. rng is only consulted in flicker mode.
func NewPricer(store *state.Store, mode Mode, rng *rand.Rand) *Pricer {
	return &Pricer{store: store, mode: mode, rng: rng}
}

// Mode returns the configured pricing mode.
func (pr *Pricer) Mode() Mode {
	return pr.mode
}

// Quote returns the displayed price for a packet, reading the player's
// current balance at call time. In flicker mode repeated calls for the same
// packet may differ; in stable mode they differ only when credits change.
func (pr *Pricer) Quote(p *state.IntelPacket) int {
	credits := pr.store.Credits()
	u := p.PriceSeed
	if pr.mode == ModeFlicker {
		u = seedMin + pr.rng.Float64()*(seedMax-seedMin)
	}
	return priceFor(credits, u, p.ValueMultiplier())
}
