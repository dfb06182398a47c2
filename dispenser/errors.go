package dispenser

import (
	"errors"

	"github.com/calvinmclean/pilldispenser"
	"github.com/calvinmclean/pilldispenser/schedule"
)

var (
	ErrAlreadyFilled = errors.New("slot already filled")
	ErrNotFound      = errors.New("slot already empty")
	ErrNotScheduled  = errors.New("no dose scheduled for slot")

	ErrInvalidSlot = pilldispenser.ErrInvalidSlot
	ErrBusy        = schedule.ErrBusy
)

// ErrorKind groups errors by how a caller should react to them
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindBusy
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindBusy:
		return "busy"
	default:
		return "internal"
	}
}

// Classify maps an error returned by Service to its ErrorKind
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidSlot):
		return KindValidation
	case errors.Is(err, ErrAlreadyFilled):
		return KindConflict
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotScheduled):
		return KindNotFound
	case errors.Is(err, ErrBusy):
		return KindBusy
	default:
		return KindInternal
	}
}
