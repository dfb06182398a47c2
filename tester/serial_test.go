package main_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"go.bug.st/serial"

	"github.com/calvinmclean/pilldispenser/controller"
)

// portEnv names the serial port of a flashed board. The hardware tests are skipped without it
const portEnv = "PILL_SERIAL_TEST_PORT"

func sendSerial(t *testing.T, port, in string, expectedLen int) string {
	t.Helper()
	mode := &serial.Mode{
		BaudRate: controller.DefaultBaudRate,
	}

	p, err := serial.Open(port, mode)
	if err != nil {
		t.Errorf("unexpected error opening serial connection: %v", err)
		return ""
	}
	defer p.Close()

	_, err = p.Write([]byte(in))
	if err != nil {
		t.Errorf("unexpected error writing serial: %v", err)
		return ""
	}
	time.Sleep(100 * time.Millisecond)

	buf := make([]byte, expectedLen)
	total := 0
	p.SetReadTimeout(1 * time.Second)
	deadline := time.Now().Add(2 * time.Second)
	for total < expectedLen && time.Now().Before(deadline) {
		n, err := p.Read(buf[total:])
		if err != nil {
			t.Errorf("unexpected error reading serial: %v", err)
			return ""
		}
		total += n
	}
	return string(buf[:total])
}

func TestSerial(t *testing.T) {
	port := os.Getenv(portEnv)
	if port == "" {
		t.Skipf("%s is not set", portEnv)
	}

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			"Ping",
			"P",
			"OK\n",
		},
		{
			"ConfigureAndHome",
			"C5013D00204",
			"OK\nOK\n",
		},
		{
			"UnsupportedFrequency",
			"C6013",
			"error: unsupported frequency: 60\n",
		},
		{
			"DutyOutOfRange",
			"D09000",
			"error: duty out of range: 9000\n",
		},
		{
			"AngleThenHome",
			"A090A000",
			"OK\nOK\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := strings.ReplaceAll(tt.expected, "\n", "\r\n")
			out := sendSerial(t, port, tt.in, len(expected))
			clean := strings.Trim(out, "\x00")
			if clean != expected {
				t.Errorf("expected=%q, got=%q", expected, clean)
			}
		})
	}
}

func TestSerialPWM(t *testing.T) {
	port := os.Getenv(portEnv)
	if port == "" {
		t.Skipf("%s is not set", portEnv)
	}

	pwm, err := controller.OpenSerialPWM(port, controller.DefaultBaudRate)
	if err != nil {
		t.Fatalf("unexpected error opening port: %v", err)
	}
	defer pwm.Close()

	err = pwm.Configure(controller.DefaultPWMConfig())
	if err != nil {
		t.Fatalf("unexpected error configuring: %v", err)
	}

	for _, angle := range []int{0, 90, 180, 0} {
		err = pwm.SetDuty(controller.AngleToDuty(angle))
		if err != nil {
			t.Errorf("unexpected error moving to %d: %v", angle, err)
		}
		time.Sleep(controller.MoveSettleTime)
	}
}
