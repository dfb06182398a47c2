// Package dispenser runs the per-slot state machine: Empty -> Fill -> Filled -> Dispense -> Empty.
// Schedule changes happen under the store lock. Motion and persistence happen after it is released.
package dispenser

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/calvinmclean/pilldispenser"
	"github.com/calvinmclean/pilldispenser/controller"
	"github.com/calvinmclean/pilldispenser/metrics"
	"github.com/calvinmclean/pilldispenser/schedule"
)

// Actuator moves the carousel. It is implemented by *controller.Controller
type Actuator interface {
	MoveToSlot(ctx context.Context, slot pilldispenser.Slot) error
	Dispense(ctx context.Context, slot pilldispenser.Slot) error
}

var _ Actuator = &controller.Controller{}

// Outcome is what an operation did
type Outcome string

const (
	OutcomeAdded     Outcome = "added"
	OutcomeRemoved   Outcome = "removed"
	OutcomeDispensed Outcome = "dispensed"
)

// Result describes a successful operation. Warning is set when the schedule changed in
// memory but could not be persisted
type Result struct {
	Slot    pilldispenser.Slot
	Day     pilldispenser.Day
	Dose    pilldispenser.Dose
	Angle   int
	Label   string
	Outcome Outcome
	Warning error
}

// Message is the plain text confirmation shown to the caregiver
func (r Result) Message() string {
	var msg string
	switch r.Outcome {
	case OutcomeAdded:
		msg = fmt.Sprintf("Added: %s (Moved to %d°)", r.Label, r.Angle)
	case OutcomeRemoved:
		msg = fmt.Sprintf("Removed: %s", r.Label)
	case OutcomeDispensed:
		msg = fmt.Sprintf("Dispensed: %s (Angle: %d°)", r.Label, r.Angle)
	default:
		msg = r.Label
	}

	if r.Warning != nil {
		msg += fmt.Sprintf(". Save Error: %v", r.Warning)
	}
	return msg
}

// Service is the only code that mutates the schedule or moves the servo in response to requests
type Service struct {
	layout   pilldispenser.Layout
	store    *schedule.Store
	actuator Actuator
	logger   zerolog.Logger
}

func New(layout pilldispenser.Layout, store *schedule.Store, actuator Actuator, logger zerolog.Logger) *Service {
	return &Service{
		layout:   layout,
		store:    store,
		actuator: actuator,
		logger:   logger.With().Str("component", "dispenser").Logger(),
	}
}

func (s *Service) Layout() pilldispenser.Layout {
	return s.layout
}

// SlotFor is a convenience for adapters that receive (day, dose)
func (s *Service) SlotFor(day pilldispenser.Day, dose pilldispenser.Dose) (pilldispenser.Slot, error) {
	return s.layout.SlotFor(day, dose)
}

// Fill marks the slot filled and moves the carousel to it so the caregiver can load the dose.
// A slot that is already filled is left alone and ErrAlreadyFilled is returned without motion
func (s *Service) Fill(ctx context.Context, slot pilldispenser.Slot) (Result, error) {
	result, err := s.result(slot, OutcomeAdded)
	if err != nil {
		return s.done("fill", result, err)
	}

	err = s.flip(ctx, slot, true, ErrAlreadyFilled)
	if err != nil {
		return s.done("fill", result, err)
	}

	err = s.actuator.MoveToSlot(ctx, slot)
	if err != nil {
		s.rollback(ctx, slot, false, err)
		return s.done("fill", result, fmt.Errorf("error moving to %s: %w", result.Label, err))
	}

	result.Warning = s.persist(ctx)
	return s.done("fill", result, nil)
}

// Remove clears the slot without moving anything
func (s *Service) Remove(ctx context.Context, slot pilldispenser.Slot) (Result, error) {
	result, err := s.result(slot, OutcomeRemoved)
	if err != nil {
		return s.done("remove", result, err)
	}

	err = s.flip(ctx, slot, false, ErrNotFound)
	if err != nil {
		return s.done("remove", result, err)
	}

	result.Warning = s.persist(ctx)
	return s.done("remove", result, nil)
}

// Dispense clears the slot and runs the dispense motion. The check and the clear happen in one
// critical section, so of several concurrent requests for one slot exactly one moves the servo
func (s *Service) Dispense(ctx context.Context, slot pilldispenser.Slot) (Result, error) {
	result, err := s.result(slot, OutcomeDispensed)
	if err != nil {
		return s.done("dispense", result, err)
	}

	err = s.flip(ctx, slot, false, ErrNotScheduled)
	if err != nil {
		return s.done("dispense", result, err)
	}

	err = s.actuator.Dispense(ctx, slot)
	if err != nil {
		s.rollback(ctx, slot, true, err)
		return s.done("dispense", result, fmt.Errorf("error dispensing %s: %w", result.Label, err))
	}

	result.Warning = s.persist(ctx)
	return s.done("dispense", result, nil)
}

// List returns the filled slots in ascending order
func (s *Service) List(ctx context.Context) ([]pilldispenser.Slot, error) {
	return s.store.Filled(ctx)
}

// DoseRef is a filled slot expressed as a day and dose
type DoseRef struct {
	Slot pilldispenser.Slot
	Day  pilldispenser.Day
	Dose pilldispenser.Dose
}

// Doses is List mapped through the layout
func (s *Service) Doses(ctx context.Context) ([]DoseRef, error) {
	slots, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]DoseRef, 0, len(slots))
	for _, slot := range slots {
		day, dose, err := s.layout.Describe(slot)
		if err != nil {
			return nil, err
		}
		out = append(out, DoseRef{Slot: slot, Day: day, Dose: dose})
	}
	return out, nil
}

func (s *Service) result(slot pilldispenser.Slot, outcome Outcome) (Result, error) {
	result := Result{Slot: slot, Outcome: outcome, Label: s.layout.Label(slot)}

	day, dose, err := s.layout.Describe(slot)
	if err != nil {
		return result, err
	}
	result.Day = day
	result.Dose = dose
	result.Angle, _ = s.layout.Angle(slot)
	return result, nil
}

// flip sets the slot's flag inside one critical section, or returns unchanged if it already had that value
func (s *Service) flip(ctx context.Context, slot pilldispenser.Slot, filled bool, unchanged error) error {
	return s.store.Update(ctx, func(sched schedule.Schedule) error {
		if int(slot) >= len(sched) {
			return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
		}
		if sched[slot] == filled {
			return unchanged
		}
		sched[slot] = filled
		return nil
	})
}

// rollback sets the flag back to previous only when the servo was provably never commanded.
// After a partial motion the physical state is unknown, so the new flag is kept and persisted
func (s *Service) rollback(ctx context.Context, slot pilldispenser.Slot, previous bool, cause error) {
	log := s.logger.With().Int("slot", int(slot)).Logger()

	if !errors.Is(cause, controller.ErrMotionNotStarted) {
		log.Error().Err(cause).Msg("motion failed after starting, keeping schedule change")
		if err := s.persist(ctx); err != nil {
			log.Error().Err(err).Msg("error saving schedule after failed motion")
		}
		return
	}

	// the request context may be the reason the motion never started
	rbCtx := context.WithoutCancel(ctx)
	err := s.store.SetFilled(rbCtx, slot, previous)
	if err != nil {
		log.Error().Err(err).Msg("error rolling back schedule")
		return
	}
	log.Warn().Err(cause).Bool("filled", previous).Msg("motion never started, rolled back")

	// another request may have saved while the flag was flipped
	if err := s.persist(rbCtx); err != nil {
		log.Error().Err(err).Msg("error saving schedule after rollback")
	}
}

func (s *Service) persist(ctx context.Context) error {
	err := s.store.Save(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.Warn().Err(err).Msg("schedule changed but not saved")
	}
	return err
}

func (s *Service) done(op string, result Result, err error) (Result, error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = Classify(err).String()
	case result.Warning != nil:
		outcome = "storage_warning"
	}
	metrics.OperationsTotal.WithLabelValues(op, outcome).Inc()

	ev := s.logger.Info()
	if err != nil {
		ev = s.logger.Warn().Err(err)
	}
	ev.Str("op", op).Int("slot", int(result.Slot)).Str("label", result.Label).Str("outcome", outcome).Msg(op)

	return result, err
}
