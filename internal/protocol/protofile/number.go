package protofile

import (
	"strconv"
	"strings"

	"github.com/danmuck/mcdbg/internal/protocol"
)

// Numeric is an interpreted number lexeme.
type Numeric struct {
	IsFloat bool
	Int     int64
	Float   float64
}

// Interpret classifies and evaluates the lexeme. A '.' makes it a float
// (parsed with strconv.ParseFloat, so exponents are accepted); otherwise
// it is an integer in decimal, 0x hex or 0b binary, with an optional
// leading '-'.
func (n *Number) Interpret() (Numeric, error) {
	text := n.Text
	negative := strings.HasPrefix(text, "-")
	body := strings.TrimPrefix(text, "-")
	if body == "" {
		return Numeric{}, n.invalid(nil)
	}

	if strings.Contains(body, ".") {
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return Numeric{}, n.invalid(err)
		}
		if negative {
			f = -f
		}
		return Numeric{IsFloat: true, Float: f}, nil
	}

	base := 10
	switch {
	case strings.HasPrefix(body, "0x"), strings.HasPrefix(body, "0X"):
		base, body = 16, body[2:]
	case strings.HasPrefix(body, "0b"), strings.HasPrefix(body, "0B"):
		base, body = 2, body[2:]
	}
	if body == "" {
		return Numeric{}, n.invalid(nil)
	}
	if negative {
		body = "-" + body
	}
	v, err := strconv.ParseInt(body, base, 64)
	if err != nil {
		return Numeric{}, n.invalid(err)
	}
	return Numeric{Int: v}, nil
}

// Int interprets the lexeme and requires an integer.
func (n *Number) Int() (int64, error) {
	v, err := n.Interpret()
	if err != nil {
		return 0, err
	}
	if v.IsFloat {
		return 0, protocol.Errorf(protocol.KindInvalidPacketFormat, "protofile.Int", "number %q at offset %d must be an integer", n.Text, n.Start)
	}
	return v.Int, nil
}

func (n *Number) invalid(cause error) error {
	return protocol.Wrap(protocol.KindInvalidPacketFormat, "protofile.Interpret", "", cause, "cannot parse number %q at offset %d", n.Text, n.Start)
}

// Value returns the literal with escapes resolved.
func (s *String) Value() (string, error) {
	return Unescape(s.Text)
}

// Unescape resolves C-style escapes: \a \b \f \n \r \t \v \\ \' \" and
// \xHH. Unknown escapes are kept as written.
func Unescape(raw string) (string, error) {
	if !strings.Contains(raw, `\`) {
		return raw, nil
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			return "", protocol.Errorf(protocol.KindInvalidPacketFormat, "protofile.Unescape", "dangling escape in %q", raw)
		}
		switch raw[i] {
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '\\', '\'', '"':
			b.WriteByte(raw[i])
		case 'x', 'X':
			if i+3 > len(raw) {
				return "", protocol.Errorf(protocol.KindInvalidPacketFormat, "protofile.Unescape", "short \\x escape in %q", raw)
			}
			v, err := strconv.ParseUint(raw[i+1:i+3], 16, 8)
			if err != nil {
				return "", protocol.Wrap(protocol.KindInvalidPacketFormat, "protofile.Unescape", "", err, "bad \\x escape in %q", raw)
			}
			b.WriteByte(byte(v))
			i += 2
		default:
			b.WriteByte('\\')
			b.WriteByte(raw[i])
		}
	}
	return b.String(), nil
}
