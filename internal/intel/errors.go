package intel

import "errors"

// Purchase rejection reasons. A rejected purchase leaves all state unchanged;
// callers can branch on these with errors.Is.
var (
	// ErrDealActive: another intel deal is live; at most one exists globally.
	ErrDealActive = errors.New("an intel deal is already active")
	// ErrPacketNotFound: no such packet is currently listed at the offer
	// location (it may have been pruned by a refresh, or already purchased).
	ErrPacketNotFound = errors.New("intel packet not found")
	// ErrPriceMismatch: the caller-supplied price deviates from the price
	// derivable from the packet's seed and the live credit balance.
	ErrPriceMismatch = errors.New("proposed price deviates from the quoted price")
	// ErrInsufficientFunds: the player cannot cover the proposed price.
	ErrInsufficientFunds = errors.New("insufficient credits")
)
