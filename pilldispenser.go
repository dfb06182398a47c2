package pilldispenser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSlot is returned for any (day, dose) pair or slot index that does not exist in a Layout
var ErrInvalidSlot = errors.New("invalid slot")

// Day is a calendar weekday. Monday is the first day of the dispenser's week
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Day) String() string {
	if d < Monday || d > Sunday {
		return "unknown"
	}
	return dayNames[d]
}

// Short returns the capitalized three letter form used in labels, like "Mon"
func (d Day) Short() string {
	if d < Monday || d > Sunday {
		return "???"
	}
	return strings.ToUpper(dayNames[d][:1]) + dayNames[d][1:3]
}

// Next goes to the following day, wrapping Sunday back to Monday
func (d Day) Next() Day {
	if d == Sunday {
		return Monday
	}
	return d + 1
}

// ParseDay reads a day name case-insensitively. Both full names and three letter abbreviations are accepted
func ParseDay(s string) (Day, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range dayNames {
		if s == name || (len(s) == 3 && s == name[:3]) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidSlot, s)
}

// Dose is the ordinal of a dose within a day: 1 or 2
type Dose int

// Slot indexes one (day, dose) position in the weekly schedule and in the servo position table
type Slot int

// Layout describes which (day, dose) pairs exist and which angle each slot sits at.
// Monday through Friday always get two doses occupying slots 0-9 in day order
type Layout struct {
	name      string
	weekend   []Day
	positions []int
}

var (
	// LayoutWeekday is the 11 slot carousel: two doses Monday-Friday and a single Saturday dose
	LayoutWeekday = Layout{
		name:      "weekday",
		weekend:   []Day{Saturday},
		positions: []int{0, 17, 34, 52, 69, 86, 103, 121, 138, 155, 172},
	}

	// LayoutWeekly is the 12 slot carousel that adds a single Sunday dose
	LayoutWeekly = Layout{
		name:      "weekly",
		weekend:   []Day{Saturday, Sunday},
		positions: []int{0, 16, 32, 48, 64, 80, 96, 112, 128, 144, 160, 176},
	}
)

const weekdaySlots = 10

// LayoutByName returns "weekday" or "weekly"
func LayoutByName(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LayoutWeekday.name, "":
		return LayoutWeekday, nil
	case LayoutWeekly.name:
		return LayoutWeekly, nil
	default:
		return Layout{}, fmt.Errorf("unknown layout %q", name)
	}
}

func (l Layout) String() string {
	return l.name
}

// NumSlots is the size of the schedule and of the position table
func (l Layout) NumSlots() int {
	return len(l.positions)
}

// Valid reports whether the slot index exists in this Layout
func (l Layout) Valid(s Slot) bool {
	return s >= 0 && int(s) < len(l.positions)
}

// Positions returns a copy of the servo angle table, indexed by Slot
func (l Layout) Positions() []int {
	out := make([]int, len(l.positions))
	copy(out, l.positions)
	return out
}

// Angle returns the fixed servo angle for a slot
func (l Layout) Angle(s Slot) (int, error) {
	if !l.Valid(s) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSlot, s)
	}
	return l.positions[s], nil
}

// SlotFor maps a day and dose to its slot. Weekend days only have dose 1
func (l Layout) SlotFor(day Day, dose Dose) (Slot, error) {
	if dose != 1 && dose != 2 {
		return 0, fmt.Errorf("%w: %s dose %d", ErrInvalidSlot, day, dose)
	}

	if day >= Monday && day <= Friday {
		return Slot(int(day)*2 + int(dose) - 1), nil
	}

	for i, d := range l.weekend {
		if d == day && dose == 1 {
			return Slot(weekdaySlots + i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s dose %d", ErrInvalidSlot, day, dose)
}

// Describe is the inverse of SlotFor
func (l Layout) Describe(s Slot) (Day, Dose, error) {
	if !l.Valid(s) {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidSlot, s)
	}
	if s < weekdaySlots {
		return Day(s / 2), Dose(s%2 + 1), nil
	}
	return l.weekend[int(s)-weekdaySlots], 1, nil
}

// Label formats a slot for people, like "Mon Dose 1"
func (l Layout) Label(s Slot) string {
	day, dose, err := l.Describe(s)
	if err != nil {
		return "Invalid Slot"
	}
	return fmt.Sprintf("%s Dose %d", day.Short(), dose)
}
