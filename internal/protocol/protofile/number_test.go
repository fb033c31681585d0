package protofile

import (
	"errors"
	"math"
	"testing"

	"github.com/danmuck/mcdbg/internal/protocol"
	"github.com/danmuck/mcdbg/internal/testutil/testlog"
)

func TestNumberInterpret(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		text    string
		isFloat bool
		i       int64
		f       float64
	}{
		{"0", false, 0, 0},
		{"42", false, 42, 0},
		{"-7", false, -7, 0},
		{"0x1F", false, 31, 0},
		{"0XfF", false, 255, 0},
		{"-0x10", false, -16, 0},
		{"0b101", false, 5, 0},
		{"-0b11", false, -3, 0},
		{"9223372036854775807", false, math.MaxInt64, 0},
		{"-9223372036854775808", false, math.MinInt64, 0},
		{"1.5", true, 0, 1.5},
		{"-2.25", true, 0, -2.25},
		{"1.5e3", true, 0, 1500},
	}
	for _, tc := range cases {
		n := &Number{Text: tc.text}
		got, err := n.Interpret()
		if err != nil {
			t.Fatalf("interpret %q: %v", tc.text, err)
		}
		if got.IsFloat != tc.isFloat || got.Int != tc.i || got.Float != tc.f {
			t.Fatalf("interpret %q: expected {%v %d %v}, got %+v", tc.text, tc.isFloat, tc.i, tc.f, got)
		}
	}
}

func TestNumberInterpretInvalid(t *testing.T) {
	testlog.Start(t)
	for _, text := range []string{"-", "0x", "0b", "12ab", "0b102", "1e5", "1.2.3", "99999999999999999999"} {
		_, err := (&Number{Text: text}).Interpret()
		if err == nil {
			t.Fatalf("expected error for %q", text)
		}
		if !errors.Is(err, protocol.ErrInvalidPacketFormat) {
			t.Fatalf("expected ErrInvalidPacketFormat for %q, got %v", text, err)
		}
	}
}

func TestNumberIntRejectsFloat(t *testing.T) {
	testlog.Start(t)
	if _, err := (&Number{Text: "3.0"}).Int(); err == nil {
		t.Fatalf("expected float to be rejected by Int")
	}
}

func TestUnescape(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		`plain`:        "plain",
		`a\tb`:         "a\tb",
		`\a\b\f\n\r\v`: "\a\b\f\n\r\v",
		`\\ \' \"`:     `\ ' "`,
		`\x41\X62`:     "Ab",
		`\q`:           `\q`,
	}
	for raw, want := range cases {
		got, err := Unescape(raw)
		if err != nil {
			t.Fatalf("unescape %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("unescape %q: expected %q, got %q", raw, want, got)
		}
	}
}

func TestUnescapeMalformed(t *testing.T) {
	testlog.Start(t)
	for _, raw := range []string{`\x4`, `\xZZ`, `abc\`} {
		if _, err := Unescape(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
