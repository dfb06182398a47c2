package controller

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNotSent is wrapped by a PWM when a command never reached the output. Any other
// SetDuty error means the servo may have moved
var ErrNotSent = errors.New("command not sent")

// PWM is the servo signal output. It is implemented by the serial firmware bridge and by SimPWM
type PWM interface {
	Configure(PWMConfig) error
	SetDuty(duty uint32) error
}

// AngleToDuty converts an angle in degrees to a 13-bit duty value at 50Hz. Angles outside
// 0-180 are clamped
func AngleToDuty(angle int) uint32 {
	angle = clampAngle(angle)
	pulse := MinPulseWidth + (MaxPulseWidth-MinPulseWidth)*angle/MaxAngle
	period := 1_000_000 / Frequency
	return uint32(pulse * ((1 << ResolutionBits) - 1) / period)
}

func clampAngle(angle int) int {
	return min(max(angle, 0), MaxAngle)
}

// SimPWM stands in for hardware. It logs and remembers every duty it is given
type SimPWM struct {
	logger zerolog.Logger

	mu     sync.Mutex
	cfg    PWMConfig
	duties []uint32
}

var _ PWM = &SimPWM{}

func NewSimPWM(logger zerolog.Logger) *SimPWM {
	return &SimPWM{logger: logger.With().Str("output", "sim").Logger()}
}

// Configure implements PWM.
func (s *SimPWM) Configure(cfg PWMConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.logger.Debug().Uint32("freq_hz", cfg.Frequency).Uint8("resolution", cfg.ResolutionBits).Msg("configured")
	return nil
}

// SetDuty implements PWM.
func (s *SimPWM) SetDuty(duty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duties = append(s.duties, duty)
	s.logger.Debug().Uint32("duty", duty).Msg("set duty")
	return nil
}

// Duties returns every duty commanded so far
func (s *SimPWM) Duties() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint32, len(s.duties))
	copy(out, s.duties)
	return out
}
