package commands

import (
	"errors"
	"io"
)

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control a device
type Controller interface {
	Configure(frequency, resolutionBits uint32) error
	SetDuty(uint32) error
	SetAngle(int) error
	Verbose()

	// I/O
	ReadByte() (byte, error)
	WriteByte(byte) error
}

var (
	ConfigureCommand = &Command{
		Flag:      'C',
		InputSize: 4,
		Run: func(c Controller, input []byte) error {
			freq, err := digits(input[:2])
			if err != nil {
				return err
			}
			res, err := digits(input[2:])
			if err != nil {
				return err
			}
			return c.Configure(freq, res)
		},
		Description: "Configure the PWM output. Input: frequency (2 digits), resolution bits (2 digits).",
	}
	DutyCommand = &Command{
		Flag:      'D',
		InputSize: 5,
		Run: func(c Controller, input []byte) error {
			duty, err := digits(input)
			if err != nil {
				return err
			}
			return c.SetDuty(duty)
		},
		Description: "Set the raw duty at the configured resolution. Input: 5 digits.",
	}
	AngleCommand = &Command{
		Flag:      'A',
		InputSize: 3,
		Run: func(c Controller, input []byte) error {
			angle, err := digits(input)
			if err != nil {
				return err
			}
			if angle > 180 {
				return errors.New("invalid input: " + string(input))
			}
			return c.SetAngle(int(angle))
		},
		Description: "Move the servo to an angle. Input: 000-180.",
	}
	PingCommand = &Command{
		Flag:        'P',
		InputSize:   0,
		Run:         func(c Controller, b []byte) error { return nil },
		Description: "Reply OK.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Enable verbose output.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, b []byte) error {
			reply(c, "Available Commands:")
			for _, cmd := range commands {
				reply(c, string(cmd.Flag)+": "+cmd.Description)
			}
			return nil
		},
	}
)

var commands = []*Command{
	ConfigureCommand,
	DutyCommand,
	AngleCommand,
	PingCommand,
	VerboseCommand,
}

// digits parses fixed width decimal input
func digits(b []byte) (uint32, error) {
	var v uint32
	for _, d := range b {
		if d < '0' || d > '9' {
			return 0, errors.New("invalid input: " + string(b))
		}
		v = v*10 + uint32(d-'0')
	}
	return v, nil
}

func reply(c Controller, s string) {
	for i := 0; i < len(s); i++ {
		c.WriteByte(s[i])
	}
	c.WriteByte('\r')
	c.WriteByte('\n')
}

// Run reads commands forever. Every command is answered with "OK" or "error: ..." on one line.
// It only returns if the input reports io.EOF
func Run(c Controller) {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}

	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}

	for {
		cmdIn, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			continue
		}

		cmd, ok := cmdMap[cmdIn]
		if !ok {
			continue
		}

		in := make([]byte, cmd.InputSize)
		for i := 0; i < int(cmd.InputSize); {
			b, err := c.ReadByte()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				continue
			}

			in[i] = b
			i++
		}

		err = cmd.Run(c, in)
		if err != nil {
			reply(c, "error: "+err.Error())
			continue
		}
		reply(c, "OK")
	}
}
