//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/calvinmclean/pilldispenser/firmware/commands"
	"github.com/calvinmclean/pilldispenser/firmware/device"
)

func main() {
	servoCfg := device.ServoConfig{
		PWM: machine.PWM3,
		Pin: machine.GP22,
	}
	calibrationCfg := device.CalibrationConfig{
		HomeAngle:   0,
		StartupWait: 500 * time.Millisecond,
	}

	d, err := device.New(servoCfg, calibrationCfg)
	if err != nil {
		panic(err)
	}

	commands.Run(&d)
}
