package protocol

import (
	"errors"
	"fmt"
)

// ErrorKind classifies recoverable failures of the protocol core.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInvalidPacketFormat is a schema or structural problem.
	KindInvalidPacketFormat
	// KindInvalidPacket means the data does not fit the declared shape or size.
	KindInvalidPacket
	// KindNotFound is a failed lookup (namespace, packet id, enum).
	KindNotFound
)

var (
	ErrInvalidPacketFormat = errors.New("protocol: invalid packet format")
	ErrInvalidPacket       = errors.New("protocol: invalid packet")
	ErrNotFound            = errors.New("protocol: not found")
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidPacketFormat:
		return "invalid_packet_format"
	case KindInvalidPacket:
		return "invalid_packet"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Sentinel returns the package level error matching k.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindInvalidPacketFormat:
		return ErrInvalidPacketFormat
	case KindInvalidPacket:
		return ErrInvalidPacket
	case KindNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// Error is the typed result of a failed protocol operation.
//
// errors.Is matches both the kind sentinel (ErrInvalidPacket, ...) and the
// wrapped cause, so callers can branch on either.
type Error struct {
	Kind  ErrorKind
	Op    string
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && e.Field != "":
		return fmt.Sprintf("%s: %s field=%q: %s", e.Op, e.Kind, e.Field, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && target == s
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around cause.
func Wrap(kind ErrorKind, op, field string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Field: field, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf reports the kind of err, or KindUnknown when err carries none.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidPacketFormat):
		return KindInvalidPacketFormat
	case errors.Is(err, ErrInvalidPacket):
		return KindInvalidPacket
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	}
	return KindUnknown
}
