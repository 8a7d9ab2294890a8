// Package timeslot builds the canonical weekly timeslot grid, filters it to
// a wall-clock window, and maps the result to a dense 1-based index space.
package timeslot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kelindar/bitmap"
)

// Quantum is the scheduling granularity, in minutes.
type Quantum int

// Allowed quanta, per spec §4.1.
const (
	Quantum15 Quantum = 15
	Quantum30 Quantum = 30
	Quantum60 Quantum = 60

	minutesPerDay = 1440
	daysPerWeek   = 7
)

// Valid reports whether q is one of the allowed quanta.
func (q Quantum) Valid() bool {
	switch q {
	case Quantum15, Quantum30, Quantum60:
		return true
	}
	return false
}

// SlotsPerDay is 1440/q.
func (q Quantum) SlotsPerDay() int {
	return minutesPerDay / int(q)
}

// Slot is a single entry in the canonical weekly grid.
type Slot struct {
	ID              int // 1-based global id, weekday-major
	Time            string
	WeekDayIndex    int
	DurationMinutes int
}

// ErrInvalidQuantum is returned when a quantum outside {15,30,60} is used.
var ErrInvalidQuantum = fmt.Errorf("invalid quantum")

// Grid builds the canonical 7*(1440/q) slot weekly grid (spec §4.1).
func Grid(q Quantum) ([]Slot, error) {
	if !q.Valid() {
		return nil, ErrInvalidQuantum
	}
	perDay := q.SlotsPerDay()
	out := make([]Slot, 0, daysPerWeek*perDay)
	id := 1
	for d := 0; d < daysPerWeek; d++ {
		for i := 0; i < perDay; i++ {
			out = append(out, Slot{
				ID:              id,
				Time:            FormatMinutes(i * int(q)),
				WeekDayIndex:    d,
				DurationMinutes: int(q),
			})
			id++
		}
	}
	return out, nil
}

// ParseMinutes parses "HH:MM" into minutes since midnight.
func ParseMinutes(t string) (int, error) {
	h, m, ok := strings.Cut(t, ":")
	if !ok {
		return 0, fmt.Errorf("timeslot: bad time %q", t)
	}
	hh, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("timeslot: bad time %q: %w", t, err)
	}
	mm, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("timeslot: bad time %q: %w", t, err)
	}
	return hh*60 + mm, nil
}

// FormatMinutes formats minutes since midnight as "HH:MM", wrapping modulo
// one day.
func FormatMinutes(m int) string {
	m = ((m % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutes adds m minutes to "HH:MM", wrapping modulo one day.
func AddMinutes(t string, m int) (string, error) {
	base, err := ParseMinutes(t)
	if err != nil {
		return "", err
	}
	return FormatMinutes(base + m), nil
}

// IsBetween reports whether t falls in [from, to), honouring midnight
// crossing when from > to (spec §4.1, P9).
func IsBetween(t, from, to string) (bool, error) {
	tm, err := ParseMinutes(t)
	if err != nil {
		return false, err
	}
	fm, err := ParseMinutes(from)
	if err != nil {
		return false, err
	}
	em, err := ParseMinutes(to)
	if err != nil {
		return false, err
	}
	if fm <= em {
		return tm >= fm && tm < em, nil
	}
	return tm >= fm || tm < em, nil
}

// FilterWindow returns the subset of grid whose Time falls in [start, end)
// under IsBetween's midnight-crossing semantics, preserving weekday-major,
// time-ascending order.
func FilterWindow(grid []Slot, start, end string) ([]Slot, error) {
	out := make([]Slot, 0, len(grid))
	for _, s := range grid {
		ok, err := IsBetween(s.Time, start, end)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// StartOfDayMinute derives the minute-of-day a global timeslot id t begins
// at, per spec §4.2: ((t-1) mod slotsPerDay) * quantum.
func StartOfDayMinute(q Quantum, t int) int {
	perDay := q.SlotsPerDay()
	return (((t - 1) % perDay) + perDay) % perDay * int(q)
}

// EndOfDayMinute derives the minute-of-day at which the last slot of an
// activity of duration k slots starting at global timeslot id t begins, per
// spec §4.2: ((t+k-2) mod slotsPerDay) * quantum.
func EndOfDayMinute(q Quantum, t, k int) int {
	perDay := q.SlotsPerDay()
	return (((t + k - 2) % perDay) + perDay) % perDay * int(q)
}

// IndexMap is the dense bijection between global timeslot ids and 1-based
// indices (spec §4.3, I1).
type IndexMap struct {
	Forward map[int]int // global id -> index
	Inverse map[int]int // index -> global id
	members bitmap.Bitmap
}

// NewIndexMap builds the bijection from a set of included global ids. ids
// need not be pre-sorted; the mapping is assigned in ascending id order so
// the image is always 1..N regardless of input order.
func NewIndexMap(ids []int) IndexMap {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)

	fwd := make(map[int]int, len(sorted))
	inv := make(map[int]int, len(sorted))
	var members bitmap.Bitmap
	for i, id := range sorted {
		idx := i + 1
		fwd[id] = idx
		inv[idx] = id
		members.Set(uint32(id))
	}
	return IndexMap{Forward: fwd, Inverse: inv, members: members}
}

// Contains reports whether global id is part of the active grid.
func (m IndexMap) Contains(id int) bool {
	return m.members.Contains(uint32(id))
}

// Len returns N, the size of the dense index space.
func (m IndexMap) Len() int {
	return len(m.Forward)
}
