//go:build tinygo

package device

import (
	"errors"
	"machine"
	"strconv"
	"time"

	"tinygo.org/x/drivers/servo"
)

const (
	servoFrequency        = 50
	defaultResolutionBits = 13
	maxResolutionBits     = 16
)

// Device drives the carousel servo. The host sends raw duty values at its own resolution
// and the Device scales them to the PWM peripheral's counter
type Device struct {
	pwm     servo.PWM
	channel uint8
	servo   servo.Servo

	resolutionBits uint32
	startTime      time.Time
	verbose        bool
}

// New initializes the servo and moves it to the home angle
func New(servoCfg ServoConfig, calibrationCfg CalibrationConfig) (Device, error) {
	myServo, err := servo.New(servoCfg.PWM, servoCfg.Pin)
	if err != nil {
		return Device{}, errors.New("error creating servo: " + err.Error())
	}

	channel, err := servoCfg.PWM.Channel(servoCfg.Pin)
	if err != nil {
		return Device{}, errors.New("error getting pwm channel: " + err.Error())
	}

	err = myServo.SetAngle(calibrationCfg.HomeAngle)
	if err != nil {
		return Device{}, errors.New("error setting servo angle: " + err.Error())
	}
	time.Sleep(calibrationCfg.StartupWait)

	return Device{
		pwm:            servoCfg.PWM,
		channel:        channel,
		servo:          myServo,
		resolutionBits: defaultResolutionBits,
		startTime:      time.Now(),
	}, nil
}

// Configure accepts the host's PWM settings. The servo runs at a fixed 50Hz so only the
// duty resolution is adjustable
func (d *Device) Configure(frequency, resolutionBits uint32) error {
	if frequency != servoFrequency {
		return errors.New("unsupported frequency: " + strconv.Itoa(int(frequency)))
	}
	if resolutionBits == 0 || resolutionBits > maxResolutionBits {
		return errors.New("unsupported resolution: " + strconv.Itoa(int(resolutionBits)))
	}
	d.resolutionBits = resolutionBits

	if d.verbose {
		println(d.ts(), "Configure", frequency, resolutionBits)
	}
	return nil
}

// SetDuty sets the raw duty, scaled from the configured resolution to the PWM's Top
func (d *Device) SetDuty(duty uint32) error {
	maxDuty := uint32(1)<<d.resolutionBits - 1
	if duty > maxDuty {
		return errors.New("duty out of range: " + strconv.Itoa(int(duty)))
	}

	value := uint32(uint64(duty) * uint64(d.pwm.Top()) / uint64(maxDuty))
	d.pwm.Set(d.channel, value)

	if d.verbose {
		println(d.ts(), "SetDuty", duty, value)
	}
	return nil
}

// SetAngle moves the servo using the driver's own pulse mapping
func (d *Device) SetAngle(angle int) error {
	if d.verbose {
		println(d.ts(), "SetAngle", angle)
	}
	return d.servo.SetAngle(angle)
}

// Verbose sets the Device to Verbose mode and increases logging
func (d *Device) Verbose() {
	d.verbose = true
	println(d.ts(), "Set Verbose Mode")
}

// ts returns the uptime timestamp for logging
func (d *Device) ts() string {
	return "[" + time.Since(d.startTime).String() + "]"
}

func (d *Device) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

func (d *Device) WriteByte(b byte) error {
	return machine.Serial.WriteByte(b)
}
