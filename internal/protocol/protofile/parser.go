// Package protofile parses .proto schema text.
//
// The format is a small recursive notation built from three node kinds:
//
//	number   42, -7, 0x1F, 0b101, 1.5
//	string   "field_name"   (C-style escapes kept raw, see Unescape)
//	object   name(args...)  optionally followed by [list] or {key: value}
//
// A document is a sequence of top-level items; # starts a line comment.
//
//	version_info(){ "protocol_number": 769 }
//	namespace("handshake")[
//	    packet(0, "Handshake")[
//	        varint("protocol_version"),
//	        string("server_address", 255),
//	        ushort("server_port"),
//	        varint("next_state"),
//	    ]
//	]
package protofile

import (
	"github.com/danmuck/mcdbg/internal/protocol/namehash"
)

// MaxLiteralLen bounds string literal contents and number lexemes.
const MaxLiteralLen = 512

type parser struct {
	src string
	pos int
}

// Parse parses a whole document in root mode.
func Parse(text string) (List, error) {
	p := &parser{src: text}
	return p.parseRoot()
}

func (p *parser) errorf(offset int, format string, args ...any) error {
	return newParseError(p.src, offset, format, args...)
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == '#':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		case isSpace(c):
			p.pos++
		default:
			return
		}
	}
}

// Top-level items need no separator; a stray comma is tolerated.
func (p *parser) parseRoot() (List, error) {
	out := make(List, 0, 16)
	for {
		p.skipSpace()
		if p.eof() {
			return out, nil
		}
		switch c := p.peek(); c {
		case ',':
			p.pos++
			continue
		case ')', ']', '}':
			return nil, p.errorf(p.pos, "unbalanced %q at top level", c)
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
}

func (p *parser) parseItem() (Node, error) {
	c := p.peek()
	switch {
	case p.eof():
		return nil, p.errorf(p.pos, "unexpected end of input, expected a value")
	case c == '"':
		return p.parseString()
	case isDigit(c) || c == '-':
		return p.parseNumber()
	case isAlpha(c) || c == '_':
		return p.parseObject()
	default:
		return nil, p.errorf(p.pos, "unable to parse data type starting with %q", c)
	}
}

// Numbers are not evaluated here; the lexeme is kept for Interpret.
func (p *parser) parseNumber() (*Number, error) {
	start := p.pos
	p.pos++
	for !p.eof() {
		c := p.src[p.pos]
		if !isAlnum(c) && c != '-' && c != '.' && c != '_' {
			break
		}
		p.pos++
	}
	if p.pos-start > MaxLiteralLen {
		return nil, p.errorf(start, "number too long (%d bytes, max %d)", p.pos-start, MaxLiteralLen)
	}
	return &Number{Text: p.src[start:p.pos], Start: start}, nil
}

func (p *parser) parseString() (*String, error) {
	quote := p.pos
	p.pos++
	start := p.pos
	escaped := false
	for {
		if p.eof() {
			return nil, p.errorf(quote, "unterminated string")
		}
		c := p.src[p.pos]
		if c == '"' && !escaped {
			break
		}
		escaped = c == '\\' && !escaped
		p.pos++
	}
	text := p.src[start:p.pos]
	p.pos++
	if len(text) > MaxLiteralLen {
		return nil, p.errorf(start, "string too long (%d bytes, max %d)", len(text), MaxLiteralLen)
	}
	return &String{Text: text, Start: quote}, nil
}

func (p *parser) parseObject() (*Object, error) {
	start := p.pos
	for !p.eof() && (isAlnum(p.src[p.pos]) || p.src[p.pos] == '_') {
		p.pos++
	}
	name := p.src[start:p.pos]
	if len(name) > namehash.MaxNameLen {
		return nil, p.errorf(start, "object name too long (%d bytes, max %d)", len(name), namehash.MaxNameLen)
	}
	obj := &Object{Name: name, NameHash: namehash.Hash(name), Start: start}

	p.skipSpace()
	if p.peek() != '(' {
		return nil, p.errorf(p.pos, "object %q must have an argument list, although it may be empty", name)
	}
	open := p.pos
	p.pos++
	args, err := p.parseSeq(open, ')')
	if err != nil {
		return nil, err
	}
	obj.Args = args

	for {
		p.skipSpace()
		switch p.peek() {
		case '(':
			return nil, p.errorf(p.pos, "object %q cannot have two argument lists", name)
		case '[':
			if obj.AttachedList != nil || obj.AttachedDict != nil {
				return nil, p.errorf(p.pos, "object %q cannot carry more than one attached list or dict", name)
			}
			open := p.pos
			p.pos++
			list, err := p.parseSeq(open, ']')
			if err != nil {
				return nil, err
			}
			obj.AttachedList = &list
		case '{':
			if obj.AttachedList != nil || obj.AttachedDict != nil {
				return nil, p.errorf(p.pos, "object %q cannot carry more than one attached list or dict", name)
			}
			open := p.pos
			p.pos++
			dict, err := p.parseDict(open)
			if err != nil {
				return nil, err
			}
			obj.AttachedDict = &dict
		default:
			return obj, nil
		}
	}
}

// parseSeq parses elements up to and including closer. Elements are
// comma separated; a trailing comma is allowed.
func (p *parser) parseSeq(open int, closer byte) (List, error) {
	out := make(List, 0, 4)
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf(open, "unterminated %q, expected %q", p.src[open], closer)
		}
		c := p.peek()
		if c == closer {
			p.pos++
			return out, nil
		}
		if isCloser(c) {
			return nil, p.errorf(p.pos, "mismatched %q, expected %q", c, closer)
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		out = append(out, item)

		p.skipSpace()
		switch c := p.peek(); {
		case c == ',':
			p.pos++
		case c == closer:
		case p.eof():
			return nil, p.errorf(open, "unterminated %q, expected %q", p.src[open], closer)
		case isCloser(c):
			return nil, p.errorf(p.pos, "mismatched %q, expected %q", c, closer)
		default:
			return nil, p.errorf(p.pos, "unknown separator %q in list", c)
		}
	}
}

func (p *parser) parseDict(open int) (Dict, error) {
	out := make(Dict, 0, 4)
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf(open, "unterminated '{', expected '}'")
		}
		c := p.peek()
		if c == '}' {
			p.pos++
			return out, nil
		}
		if isCloser(c) {
			return nil, p.errorf(p.pos, "mismatched %q, expected '}'", c)
		}
		key, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf(p.pos, "dict is lacking a colon to indicate a key-value pair")
		}
		p.pos++
		p.skipSpace()
		value, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		out = append(out, Pair{Key: key, Value: value})

		p.skipSpace()
		switch c := p.peek(); {
		case c == ',':
			p.pos++
		case c == '}':
		case p.eof():
			return nil, p.errorf(open, "unterminated '{', expected '}'")
		case isCloser(c):
			return nil, p.errorf(p.pos, "mismatched %q, expected '}'", c)
		default:
			return nil, p.errorf(p.pos, "unknown separator %q in dict", c)
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

func isCloser(c byte) bool { return c == ')' || c == ']' || c == '}' }
