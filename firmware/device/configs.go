//go:build tinygo

package device

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/servo"
)

// ServoConfig has device-level values for setting up the Servo
type ServoConfig struct {
	Pin machine.Pin
	PWM servo.PWM
}

// CalibrationConfig has values for the carousel that depend on the servo and its mounting
type CalibrationConfig struct {
	HomeAngle   int
	StartupWait time.Duration
}
