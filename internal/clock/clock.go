// Package clock drives the turn-based day count. It owns the refresh
// cadence for intel generation and runs the per-day hooks (deal expiry,
// market drift) that nothing else is allowed to own.
package clock

import "sync"

// Clock counts in-game days and fires hooks as they pass.
type Clock struct {
	mu           sync.Mutex
	day          int
	refreshEvery int

	onDay     []func(day int)
	onRefresh []func()
}

// New creates a clock at startDay. refreshEvery is the intel refresh cadence
// in days; 0 disables refreshes.
func New(startDay, refreshEvery int) *Clock {
	return &Clock{day: startDay, refreshEvery: refreshEvery}
}

// CurrentDay returns the current day count.
func (c *Clock) CurrentDay() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

// OnDay registers a hook invoked once per elapsed day, in registration
// order, after the day counter has moved.
func (c *Clock) OnDay(fn func(day int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDay = append(c.onDay, fn)
}

// OnRefresh registers a hook invoked on each refresh boundary.
func (c *Clock) OnRefresh(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = append(c.onRefresh, fn)
}

// Advance moves the clock forward by days, one day at a time so no hook or
// refresh boundary is skipped. Hooks run outside the clock lock: they are
// expected to read the day back through CurrentDay.
func (c *Clock) Advance(days int) int {
	for i := 0; i < days; i++ {
		c.mu.Lock()
		c.day++
		day := c.day
		refresh := c.refreshEvery > 0 && day%c.refreshEvery == 0
		onDay := append([]func(int){}, c.onDay...)
		onRefresh := append([]func(){}, c.onRefresh...)
		c.mu.Unlock()

		for _, fn := range onDay {
			fn(day)
		}
		if refresh {
			for _, fn := range onRefresh {
				fn()
			}
		}
	}
	return c.CurrentDay()
}
