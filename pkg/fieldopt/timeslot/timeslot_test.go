package timeslot

import "testing"

func TestGridInvalidQuantum(t *testing.T) {
	if _, err := Grid(20); err != ErrInvalidQuantum {
		t.Fatalf("expected ErrInvalidQuantum, got %v", err)
	}
}

func TestGridShape(t *testing.T) {
	grid, err := Grid(Quantum15)
	if err != nil {
		t.Fatal(err)
	}
	if len(grid) != 672 {
		t.Fatalf("expected 672 slots, got %d", len(grid))
	}
	if grid[0].ID != 1 || grid[0].Time != "00:00" || grid[0].WeekDayIndex != 0 {
		t.Fatalf("unexpected first slot: %+v", grid[0])
	}
	last := grid[len(grid)-1]
	if last.ID != 672 || last.WeekDayIndex != 6 || last.Time != "23:45" {
		t.Fatalf("unexpected last slot: %+v", last)
	}
}

func TestIsBetweenMidnightCrossing(t *testing.T) {
	// P9: S=22:00 E=02:00 includes 23:00 and 01:00, excludes 02:00 and 21:59.
	cases := []struct {
		t    string
		want bool
	}{
		{"23:00", true},
		{"01:00", true},
		{"02:00", false},
		{"21:59", false},
	}
	for _, c := range cases {
		got, err := IsBetween(c.t, "22:00", "02:00")
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("IsBetween(%q, 22:00, 02:00) = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestIsBetweenNormal(t *testing.T) {
	got, err := IsBetween("09:00", "08:00", "17:00")
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Fatal("expected 09:00 to be within 08:00-17:00")
	}
	got, err = IsBetween("17:00", "08:00", "17:00")
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Fatal("window end is exclusive")
	}
}

func TestIndexMapBijection(t *testing.T) {
	// P1: inverse(forward(x)) == x and the image is 1..N.
	ids := []int{50, 10, 30, 20, 40}
	m := NewIndexMap(ids)
	if m.Len() != len(ids) {
		t.Fatalf("expected N=%d, got %d", len(ids), m.Len())
	}
	for _, id := range ids {
		idx, ok := m.Forward[id]
		if !ok {
			t.Fatalf("id %d missing from forward map", id)
		}
		if back, ok := m.Inverse[idx]; !ok || back != id {
			t.Fatalf("inverse(forward(%d)) = %d, want %d", id, back, id)
		}
	}
	seen := make(map[int]bool)
	for idx := range m.Inverse {
		if idx < 1 || idx > len(ids) {
			t.Fatalf("index %d outside 1..%d", idx, len(ids))
		}
		seen[idx] = true
	}
	if len(seen) != len(ids) {
		t.Fatalf("image is not dense: got %d distinct indices, want %d", len(seen), len(ids))
	}
}

func TestStartEndOfDayMinute(t *testing.T) {
	// slotsPerDay=96 for Q=15. t=1 -> minute 0. t=97 (day 2, slot 1) -> minute 0.
	if got := StartOfDayMinute(Quantum15, 1); got != 0 {
		t.Fatalf("StartOfDayMinute(1) = %d, want 0", got)
	}
	if got := StartOfDayMinute(Quantum15, 97); got != 0 {
		t.Fatalf("StartOfDayMinute(97) = %d, want 0", got)
	}
	if got := StartOfDayMinute(Quantum15, 5); got != 60 {
		t.Fatalf("StartOfDayMinute(5) = %d, want 60", got)
	}
	// duration 2 slots starting at t=1: the last slot begins at minute 15.
	if got := EndOfDayMinute(Quantum15, 1, 2); got != 15 {
		t.Fatalf("EndOfDayMinute(1,2) = %d, want 15", got)
	}
}
