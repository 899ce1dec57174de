package clock

import "testing"

func TestAdvanceRunsDayHooksInOrder(t *testing.T) {
	c := New(0, 0)
	var seen []int
	c.OnDay(func(day int) { seen = append(seen, day) })

	if got := c.Advance(3); got != 3 {
		t.Errorf("Advance(3) = %d, want 3", got)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("day hooks saw %v, want [1 2 3]", seen)
	}
}

func TestRefreshCadence(t *testing.T) {
	c := New(0, 120)
	refreshes := 0
	c.OnRefresh(func() { refreshes++ })

	c.Advance(119)
	if refreshes != 0 {
		t.Fatalf("refreshes after day 119 = %d, want 0", refreshes)
	}
	c.Advance(1)
	if refreshes != 1 {
		t.Fatalf("refreshes after day 120 = %d, want 1", refreshes)
	}
	c.Advance(240)
	if refreshes != 3 {
		t.Fatalf("refreshes after day 360 = %d, want 3", refreshes)
	}
}

func TestAdvanceNeverSkipsBoundaries(t *testing.T) {
	c := New(0, 120)
	refreshes := 0
	c.OnRefresh(func() { refreshes++ })

	// One big jump must still hit every boundary inside it.
	c.Advance(365)
	if refreshes != 3 {
		t.Errorf("refreshes after a 365-day jump = %d, want 3", refreshes)
	}
	if c.CurrentDay() != 365 {
		t.Errorf("day = %d, want 365", c.CurrentDay())
	}
}

// Hooks registered from inside a hook run on later days, not the current
// one: Advance snapshots the hook list before each day fires.
func TestHookRegisteredMidAdvanceWaitsADay(t *testing.T) {
	c := New(0, 0)
	var late []int
	registered := false
	c.OnDay(func(day int) {
		if !registered {
			registered = true
			c.OnDay(func(d int) { late = append(late, d) })
		}
	})

	c.Advance(3)
	if len(late) != 2 || late[0] != 2 || late[1] != 3 {
		t.Errorf("late hook saw %v, want [2 3]", late)
	}
}

func TestHooksSeeCurrentDay(t *testing.T) {
	c := New(10, 0)
	c.OnDay(func(day int) {
		if got := c.CurrentDay(); got != day {
			t.Errorf("CurrentDay inside hook = %d, want %d", got, day)
		}
	})
	c.Advance(2)
}
