package controller

import "time"

// Fixed servo signal characteristics. Standard hobby servos expect a 50Hz frame with a
// 500-2500µs pulse spanning 0-180 degrees
const (
	Frequency      = 50
	ResolutionBits = 13
	MinPulseWidth  = 500
	MaxPulseWidth  = 2500
	MaxAngle       = 180
)

const (
	// MoveSettleTime is how long every MoveTo blocks after commanding the servo
	MoveSettleTime = 300 * time.Millisecond

	// DropSettleTime is the extra pause at the slot position so the pill can fall before returning home
	DropSettleTime = 500 * time.Millisecond
)

// PWMConfig is sent to the output once at startup
type PWMConfig struct {
	Frequency      uint32
	ResolutionBits uint8
}

// DefaultPWMConfig returns the 50Hz/13-bit configuration used by the servo
func DefaultPWMConfig() PWMConfig {
	return PWMConfig{Frequency: Frequency, ResolutionBits: ResolutionBits}
}

// CalibrationConfig has values for the moving parts that depend on positioning and motor specifics
type CalibrationConfig struct {
	MoveSettle time.Duration
	DropSettle time.Duration
}

// DefaultCalibrationConfig uses the named settle times
func DefaultCalibrationConfig() CalibrationConfig {
	return CalibrationConfig{
		MoveSettle: MoveSettleTime,
		DropSettle: DropSettleTime,
	}
}
