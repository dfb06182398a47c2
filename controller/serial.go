package controller

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	SerialPortNone  = "None"
	DefaultBaudRate = 115200

	serialReplyTimeout = time.Second
)

var ErrNoUSBSerial = errors.New("no USB serial ports found")

// GetSerialPorts lists USB serial devices, which is where the firmware bridge shows up
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var result []string
	for _, p := range ports {
		if p.IsUSB {
			result = append(result, p.Name)
		}
	}
	if len(result) == 0 {
		return nil, ErrNoUSBSerial
	}
	return result, nil
}

// SerialPWM drives the servo through the firmware bridge. Commands are fixed width so
// the firmware can read them without delimiters. Each command is answered with a single line.
// A missing or rejected reply is not ErrNotSent: the firmware may have acted on the command
type SerialPWM struct {
	mu           sync.Mutex
	rw           io.ReadWriter
	closer       io.Closer
	replyTimeout time.Duration
}

var _ PWM = &SerialPWM{}

// OpenSerialPWM opens the port. An empty name picks the first USB serial device
func OpenSerialPWM(portName string, baudRate int) (*SerialPWM, error) {
	if portName == "" {
		ports, err := GetSerialPorts()
		if err != nil {
			return nil, err
		}
		portName = ports[0]
	}
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", portName, err)
	}

	err = port.SetReadTimeout(serialReplyTimeout)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("error setting read timeout: %w", err)
	}

	return &SerialPWM{rw: port, closer: port, replyTimeout: serialReplyTimeout}, nil
}

// NewSerialPWM wraps an already open connection
func NewSerialPWM(rw io.ReadWriter) *SerialPWM {
	s := &SerialPWM{rw: rw, replyTimeout: serialReplyTimeout}
	if c, ok := rw.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Configure implements PWM.
func (s *SerialPWM) Configure(cfg PWMConfig) error {
	if cfg.Frequency > 99 || cfg.ResolutionBits > 99 {
		return fmt.Errorf("%w: unsupported PWM config: %+v", ErrNotSent, cfg)
	}
	return s.send(fmt.Sprintf("C%02d%02d", cfg.Frequency, cfg.ResolutionBits))
}

// SetDuty implements PWM.
func (s *SerialPWM) SetDuty(duty uint32) error {
	if duty > 99999 {
		return fmt.Errorf("%w: duty out of range: %d", ErrNotSent, duty)
	}
	return s.send(fmt.Sprintf("D%05d", duty))
}

func (s *SerialPWM) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *SerialPWM) send(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := io.WriteString(s.rw, cmd)
	if err != nil && n == 0 {
		return fmt.Errorf("%w: error writing %q: %w", ErrNotSent, cmd, err)
	}
	if err != nil {
		return fmt.Errorf("error writing %q after %d bytes: %w", cmd, n, err)
	}

	reply, err := s.readLine()
	if err != nil {
		return fmt.Errorf("error reading reply to %q: %w", cmd, err)
	}

	if reply != "OK" {
		return fmt.Errorf("firmware rejected %q: %s", cmd, reply)
	}
	return nil
}

// readLine reads until '\n'. The port returns (0, nil) on read timeout, so the
// deadline is tracked here
func (s *SerialPWM) readLine() (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	deadline := time.Now().Add(s.replyTimeout)

	for time.Now().Before(deadline) {
		n, err := s.rw.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			continue
		}
		if buf[0] == '\n' {
			return strings.TrimSpace(sb.String()), nil
		}
		sb.WriteByte(buf[0])
	}
	return "", errors.New("timed out waiting for reply")
}
