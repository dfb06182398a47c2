package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/calvinmclean/pilldispenser"
	"github.com/calvinmclean/pilldispenser/metrics"
)

var (
	// ErrInit means the output could not be configured. The process should not continue without a servo
	ErrInit = errors.New("actuator init failed")

	// ErrMotionNotStarted means the servo was never commanded, so callers may safely undo their bookkeeping
	ErrMotionNotStarted = errors.New("motion not started")

	// ErrMotionFailed means the servo was commanded at least once before something went wrong
	ErrMotionFailed = errors.New("motion failed")

	ErrClosed = errors.New("controller closed")
)

// Controller owns the servo. Every motion is queued to a single worker goroutine so two
// requests can never command the hardware at the same time
type Controller struct {
	pwm            PWM
	positions      []int
	calibrationCfg CalibrationConfig
	logger         zerolog.Logger

	jobs      chan *job
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	angle int
}

type job struct {
	id     uuid.UUID
	kind   string
	run    func() error
	result chan error
}

// New configures the PWM output and starts the motion worker. positions is the angle table indexed by slot
func New(pwm PWM, positions []int, calibrationCfg CalibrationConfig, logger zerolog.Logger) (*Controller, error) {
	if pwm == nil {
		return nil, fmt.Errorf("%w: no PWM output", ErrInit)
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: empty position table", ErrInit)
	}

	err := pwm.Configure(DefaultPWMConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: error configuring PWM: %w", ErrInit, err)
	}

	c := &Controller{
		pwm:            pwm,
		positions:      append([]int(nil), positions...),
		calibrationCfg: calibrationCfg,
		logger:         logger.With().Str("component", "controller").Logger(),
		jobs:           make(chan *job),
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
		angle:          -1,
	}

	go c.work()

	return c, nil
}

func (c *Controller) work() {
	defer close(c.done)
	for {
		select {
		case j := <-c.jobs:
			metrics.MotionQueueDepth.Dec()
			start := time.Now()
			err := j.run()

			result := "ok"
			if err != nil {
				result = "error"
			}
			metrics.MotionsTotal.WithLabelValues(j.kind, result).Inc()
			c.logger.Debug().
				Str("job", j.id.String()).
				Str("kind", j.kind).
				Dur("took", time.Since(start)).
				Err(err).
				Msg("motion done")

			j.result <- err
		case <-c.quit:
			return
		}
	}
}

// submit hands a job to the worker and waits for it. The unbuffered handoff is the point
// of no return: before it the job can be abandoned, after it the motion always runs to completion
func (c *Controller) submit(ctx context.Context, kind string, run func() error) error {
	j := &job{
		id:     uuid.New(),
		kind:   kind,
		run:    run,
		result: make(chan error, 1),
	}

	metrics.MotionQueueDepth.Inc()
	select {
	case c.jobs <- j:
	case <-ctx.Done():
		metrics.MotionQueueDepth.Dec()
		metrics.MotionsTotal.WithLabelValues(kind, "abandoned").Inc()
		return fmt.Errorf("%w: %w", ErrMotionNotStarted, ctx.Err())
	case <-c.quit:
		metrics.MotionQueueDepth.Dec()
		return fmt.Errorf("%w: %w", ErrMotionNotStarted, ErrClosed)
	}

	return <-j.result
}

// MoveTo moves to the angle (clamped to 0-180) and blocks until the servo has settled
func (c *Controller) MoveTo(ctx context.Context, angle int) error {
	return c.submit(ctx, "move", func() error {
		return firstMove(c.moveTo(angle))
	})
}

// MoveToSlot moves to the angle of the slot
func (c *Controller) MoveToSlot(ctx context.Context, slot pilldispenser.Slot) error {
	angle, err := c.slotAngle(slot)
	if err != nil {
		return err
	}

	return c.submit(ctx, "move", func() error {
		return firstMove(c.moveTo(angle))
	})
}

// Dispense moves to the slot, waits for the pill to drop and returns home. The sequence
// is a single job so no other motion can run in between
func (c *Controller) Dispense(ctx context.Context, slot pilldispenser.Slot) error {
	angle, err := c.slotAngle(slot)
	if err != nil {
		return err
	}

	return c.submit(ctx, "dispense", func() error {
		err := firstMove(c.moveTo(angle))
		if err != nil {
			return err
		}

		time.Sleep(c.calibrationCfg.DropSettle)

		err = c.moveTo(c.positions[0])
		if err != nil {
			return fmt.Errorf("%w: error returning home: %w", ErrMotionFailed, err)
		}
		return nil
	})
}

// Home moves to the slot 0 position
func (c *Controller) Home(ctx context.Context) error {
	return c.MoveToSlot(ctx, 0)
}

// Angle returns the last commanded angle, or -1 before the first motion
func (c *Controller) Angle() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.angle
}

// Close stops the worker after any running motion finishes
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
	<-c.done
	return nil
}

func (c *Controller) slotAngle(slot pilldispenser.Slot) (int, error) {
	if slot < 0 || int(slot) >= len(c.positions) {
		return 0, fmt.Errorf("%w: %d", pilldispenser.ErrInvalidSlot, slot)
	}
	return c.positions[slot], nil
}

// firstMove classifies the error of the first command of a job. Only a command that never
// reached the output proves the servo did not move
func firstMove(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotSent):
		return fmt.Errorf("%w: %w", ErrMotionNotStarted, err)
	default:
		return fmt.Errorf("%w: %w", ErrMotionFailed, err)
	}
}

// moveTo must only be called by the worker
func (c *Controller) moveTo(angle int) error {
	angle = clampAngle(angle)
	duty := AngleToDuty(angle)

	err := c.pwm.SetDuty(duty)
	if err != nil {
		c.logger.Error().Err(err).Int("angle", angle).Msg("error setting duty")
		return fmt.Errorf("error setting duty %d: %w", duty, err)
	}

	c.logger.Info().Int("angle", angle).Uint32("duty", duty).Msg("moving servo")

	c.mu.Lock()
	c.angle = angle
	c.mu.Unlock()
	metrics.ServoAngle.Set(float64(angle))

	time.Sleep(c.calibrationCfg.MoveSettle)
	return nil
}
