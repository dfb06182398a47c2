// Package schedule keeps the filled/empty flag of every slot and persists it as a single blob.
package schedule

import (
	"errors"
	"fmt"

	"github.com/calvinmclean/pilldispenser"
)

// ErrCorrupt means the persisted blob does not match the layout. The schedule is reset to empty
var ErrCorrupt = errors.New("corrupt schedule blob")

// Schedule holds one flag per slot, indexed by slot
type Schedule []bool

// New returns an all empty Schedule
func New(numSlots int) Schedule {
	return make(Schedule, numSlots)
}

// MarshalBinary encodes one byte per slot, 1 for filled and 0 for empty
func (s Schedule) MarshalBinary() ([]byte, error) {
	out := make([]byte, len(s))
	for i, filled := range s {
		if filled {
			out[i] = 1
		}
	}
	return out, nil
}

// UnmarshalBinary decodes into a Schedule that is already sized for the layout. A blob of
// any other size is rejected with ErrCorrupt
func (s *Schedule) UnmarshalBinary(data []byte) error {
	if len(data) != len(*s) {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrCorrupt, len(data), len(*s))
	}
	for i, b := range data {
		(*s)[i] = b != 0
	}
	return nil
}

// FilledSlots returns the filled slot indices in ascending order
func (s Schedule) FilledSlots() []pilldispenser.Slot {
	out := []pilldispenser.Slot{}
	for i, filled := range s {
		if filled {
			out = append(out, pilldispenser.Slot(i))
		}
	}
	return out
}

func (s Schedule) clone() Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	return out
}

func (s Schedule) clear() {
	for i := range s {
		s[i] = false
	}
}
