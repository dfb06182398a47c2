package commands

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeController struct {
	in  *strings.Reader
	out bytes.Buffer

	freq, res uint32
	duties    []uint32
	angles    []int
	verbose   bool
}

func (f *fakeController) Configure(freq, res uint32) error {
	if freq != 50 {
		return errors.New("only 50Hz is supported")
	}
	f.freq, f.res = freq, res
	return nil
}

func (f *fakeController) SetDuty(d uint32) error {
	f.duties = append(f.duties, d)
	return nil
}

func (f *fakeController) SetAngle(a int) error {
	f.angles = append(f.angles, a)
	return nil
}

func (f *fakeController) Verbose() { f.verbose = true }

func (f *fakeController) ReadByte() (byte, error) { return f.in.ReadByte() }

func (f *fakeController) WriteByte(b byte) error { return f.out.WriteByte(b) }

var _ io.ByteReader = &fakeController{}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			"Configure",
			"C5013",
			"OK\r\n",
		},
		{
			"ConfigureUnsupported",
			"C6013",
			"error: only 50Hz is supported\r\n",
		},
		{
			"DutyAndAngle",
			"D00614A090",
			"OK\r\nOK\r\n",
		},
		{
			"IgnoresUnknownAndWhitespace",
			"x \nP",
			"OK\r\n",
		},
		{
			"InvalidDigits",
			"D00a14",
			"error: invalid input: 00a14\r\n",
		},
		{
			"AngleOutOfRange",
			"A181",
			"error: invalid input: 181\r\n",
		},
		{
			"Verbose",
			"V",
			"OK\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeController{in: strings.NewReader(tt.in)}
			Run(c)
			if c.out.String() != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, c.out.String())
			}
		})
	}
}

func TestRunState(t *testing.T) {
	c := &fakeController{in: strings.NewReader("C5013D00614D01023A045V")}
	Run(c)

	if c.freq != 50 || c.res != 13 {
		t.Errorf("unexpected config: %d/%d", c.freq, c.res)
	}
	if len(c.duties) != 2 || c.duties[0] != 614 || c.duties[1] != 1023 {
		t.Errorf("unexpected duties: %v", c.duties)
	}
	if len(c.angles) != 1 || c.angles[0] != 45 {
		t.Errorf("unexpected angles: %v", c.angles)
	}
	if !c.verbose {
		t.Error("expected verbose")
	}
}

func TestHelp(t *testing.T) {
	c := &fakeController{in: strings.NewReader("H")}
	Run(c)

	out := c.out.String()
	for _, cmd := range commands {
		if !strings.Contains(out, string(cmd.Flag)+": "+cmd.Description) {
			t.Errorf("missing help for %q", cmd.Flag)
		}
	}
	if !strings.HasSuffix(out, "OK\r\n") {
		t.Errorf("expected OK after help, got %q", out)
	}
}

func TestDigits(t *testing.T) {
	v, err := digits([]byte("00614"))
	if err != nil || v != 614 {
		t.Errorf("unexpected result: %d, %v", v, err)
	}
	if _, err := digits([]byte("-1")); err == nil {
		t.Error("expected error")
	}
}
