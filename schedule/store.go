package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/calvinmclean/pilldispenser"
	"github.com/calvinmclean/pilldispenser/metrics"
)

const (
	Namespace = "pill_disp"
	Key       = "filled_slots"

	// DefaultLockTimeout bounds how long a request waits for the schedule before giving up with ErrBusy
	DefaultLockTimeout = 100 * time.Millisecond
)

var ErrBusy = errors.New("schedule busy")

// Store owns the in-memory Schedule and its persisted copy. All reads and writes of the
// Schedule go through the lock. The lock is never held while talking to the Backend
type Store struct {
	backend     Backend
	lockTimeout time.Duration
	logger      zerolog.Logger

	sem     *semaphore.Weighted
	slots   Schedule
	version uint64

	// saveMu orders backend writes. savedVersion lets a stale snapshot skip its write
	saveMu       sync.Mutex
	savedVersion uint64
}

// Option configures a Store
type Option func(*Store)

func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an all empty Store. Call Load to read the persisted state
func NewStore(backend Backend, numSlots int, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		lockTimeout: DefaultLockTimeout,
		logger:      zerolog.Nop(),
		sem:         semaphore.NewWeighted(1),
		slots:       New(numSlots),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "schedule").Logger()
	return s
}

func (s *Store) NumSlots() int {
	return len(s.slots)
}

func (s *Store) lock(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	err := s.sem.Acquire(ctx, 1)
	if err != nil {
		metrics.LockBusyTotal.Inc()
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return nil
}

func (s *Store) unlock() {
	s.sem.Release(1)
}

// Load reads the persisted Schedule. Missing data starts an empty schedule and writes it
// back. A blob of the wrong size also starts empty, is overwritten, and ErrCorrupt is returned
// so the caller can report it. Any other backend error leaves the schedule empty
func (s *Store) Load(ctx context.Context) error {
	data, err := s.backend.Get(ctx, Namespace, Key)

	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Info().Msg("no saved schedule, initializing to empty")
		err = s.reset(ctx)
		if err != nil {
			return err
		}
		return s.Save(ctx)
	case err != nil:
		resetErr := s.reset(ctx)
		if resetErr != nil {
			return resetErr
		}
		s.logger.Error().Err(err).Msg("error reading schedule")
		return fmt.Errorf("error reading schedule: %w", err)
	}

	err = s.lock(ctx)
	if err != nil {
		return err
	}

	loaded := New(len(s.slots))
	decodeErr := loaded.UnmarshalBinary(data)
	if decodeErr != nil {
		s.slots.clear()
	} else {
		s.slots = loaded
	}
	s.version++
	metrics.FilledSlots.Set(float64(len(s.slots.FilledSlots())))
	s.unlock()

	if decodeErr != nil {
		s.logger.Warn().Err(decodeErr).Msg("resetting schedule")
		saveErr := s.Save(ctx)
		if saveErr != nil {
			return errors.Join(decodeErr, saveErr)
		}
		return decodeErr
	}

	s.logger.Info().Int("filled", len(loaded.FilledSlots())).Msg("loaded schedule")
	return nil
}

func (s *Store) reset(ctx context.Context) error {
	err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer s.unlock()

	s.slots.clear()
	s.version++
	metrics.FilledSlots.Set(0)
	return nil
}

// Save persists a snapshot of the current Schedule. A failure is returned but the
// in-memory state is kept as is
func (s *Store) Save(ctx context.Context) error {
	err := s.lock(ctx)
	if err != nil {
		return err
	}
	snapshot := s.slots.clone()
	version := s.version
	s.unlock()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if version < s.savedVersion {
		// a newer snapshot already reached the backend
		return nil
	}

	data, _ := snapshot.MarshalBinary()
	err = s.backend.Set(ctx, Namespace, Key, data)
	if err != nil {
		metrics.StorageWritesTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("error saving schedule")
		return fmt.Errorf("error saving schedule: %w", err)
	}

	s.savedVersion = version
	metrics.StorageWritesTotal.WithLabelValues("ok").Inc()
	s.logger.Debug().Uint64("version", version).Msg("saved schedule")
	return nil
}

// Update runs fn with the lock held. fn may modify the Schedule in place and must not block
func (s *Store) Update(ctx context.Context, fn func(Schedule) error) error {
	err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer s.unlock()

	err = fn(s.slots)
	if err != nil {
		return err
	}

	s.version++
	metrics.FilledSlots.Set(float64(len(s.slots.FilledSlots())))
	return nil
}

// IsFilled reports whether the slot holds a dose
func (s *Store) IsFilled(ctx context.Context, slot pilldispenser.Slot) (bool, error) {
	if !s.valid(slot) {
		return false, fmt.Errorf("%w: %d", pilldispenser.ErrInvalidSlot, slot)
	}

	err := s.lock(ctx)
	if err != nil {
		return false, err
	}
	defer s.unlock()

	return s.slots[slot], nil
}

// SetFilled changes the in-memory flag only. Call Save to persist it
func (s *Store) SetFilled(ctx context.Context, slot pilldispenser.Slot, filled bool) error {
	if !s.valid(slot) {
		return fmt.Errorf("%w: %d", pilldispenser.ErrInvalidSlot, slot)
	}

	return s.Update(ctx, func(sched Schedule) error {
		sched[slot] = filled
		return nil
	})
}

// Snapshot returns a copy of the Schedule
func (s *Store) Snapshot(ctx context.Context) (Schedule, error) {
	err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.unlock()

	return s.slots.clone(), nil
}

// Filled returns the filled slots in ascending order
func (s *Store) Filled(ctx context.Context) ([]pilldispenser.Slot, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.FilledSlots(), nil
}

// Reset erases everything under the namespace and persists an empty Schedule
func (s *Store) Reset(ctx context.Context) error {
	err := s.backend.Erase(ctx, Namespace)
	if err != nil {
		return fmt.Errorf("error erasing %s: %w", Namespace, err)
	}

	err = s.reset(ctx)
	if err != nil {
		return err
	}
	s.logger.Warn().Msg("schedule reset")
	return s.Save(ctx)
}

func (s *Store) valid(slot pilldispenser.Slot) bool {
	return slot >= 0 && int(slot) < len(s.slots)
}
