package protofile

import (
	"fmt"
	"strings"

	"github.com/danmuck/mcdbg/internal/protocol"
)

// ParseError reports malformed schema text. It is fatal for the parse: no
// partial result is returned alongside it.
type ParseError struct {
	Offset  int
	Line    int
	Column  int
	Message string
	// Context is the source line containing Offset.
	Context string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("protofile: offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("protofile: line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func (e *ParseError) Unwrap() error {
	return protocol.ErrInvalidPacketFormat
}

// Locate resolves a byte offset in src to a 1-based line and column and
// the text of that line. ok is false when offset lies outside src.
func Locate(src string, offset int) (line, column int, context string, ok bool) {
	if offset < 0 || offset > len(src) {
		return 0, 0, "", false
	}
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	lineEnd := strings.IndexByte(src[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(src)
	} else {
		lineEnd += offset
	}
	line = strings.Count(src[:lineStart], "\n") + 1
	column = offset - lineStart + 1
	return line, column, strings.TrimRight(src[lineStart:lineEnd], "\r"), true
}

func newParseError(src string, offset int, format string, args ...any) *ParseError {
	e := &ParseError{Offset: offset, Message: fmt.Sprintf(format, args...)}
	if line, col, ctx, ok := Locate(src, offset); ok {
		e.Line, e.Column, e.Context = line, col, ctx
	}
	return e
}
