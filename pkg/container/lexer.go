// ABOUTME: Tokenizer for the HMICA text container
// ABOUTME: Splits a document into named {...} blocks and positioned fields
package container

import "strings"

// Pos is a 1-based line and byte column in a text container
type Pos struct {
	Offset int
	Line   int
	Column int
}

// block is a named, brace-delimited span such as info{...} or C1{...}
type block struct {
	name    string
	pos     Pos
	body    string
	bodyPos Pos
	closed  bool
}

// field is one separator-delimited entry of a block body with whitespace removed
type field struct {
	text string
	pos  Pos
}

type scanner struct {
	src  []byte
	off  int
	line int
	col  int
}

func newScanner(src []byte, start Pos) *scanner {
	if start.Line == 0 {
		start = Pos{Line: 1, Column: 1}
	}
	return &scanner{src: src, off: 0, line: start.Line, col: start.Column}
}

func (s *scanner) pos(base int) Pos {
	return Pos{Offset: base + s.off, Line: s.line, Column: s.col}
}

func (s *scanner) eof() bool {
	return s.off >= len(s.src)
}

func (s *scanner) peek() byte {
	return s.src[s.off]
}

func (s *scanner) advance() byte {
	c := s.src[s.off]
	s.off++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func isIdent(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// scanBlocks finds every identifier immediately followed (modulo whitespace) by
// an opening brace. Blocks do not nest; the body runs to the next closing brace.
// A block without a closing brace ends the scan and is reported unclosed.
func scanBlocks(src []byte) []block {
	var blocks []block
	s := newScanner(src, Pos{})

	for !s.eof() {
		if !isIdent(s.peek()) {
			s.advance()
			continue
		}

		namePos := s.pos(0)
		start := s.off
		for !s.eof() && isIdent(s.peek()) {
			s.advance()
		}
		name := string(src[start:s.off])

		for !s.eof() && isSpace(s.peek()) {
			s.advance()
		}
		if s.eof() || s.peek() != '{' {
			continue
		}
		s.advance()

		b := block{name: name, pos: namePos, bodyPos: s.pos(0)}
		bodyStart := s.off
		for !s.eof() && s.peek() != '}' {
			s.advance()
		}
		b.body = string(src[bodyStart:s.off])
		if s.eof() {
			blocks = append(blocks, b)
			break
		}
		s.advance()
		b.closed = true
		blocks = append(blocks, b)
	}
	return blocks
}

// findBlock returns the first block with the given name
func findBlock(blocks []block, name string) (block, bool) {
	for _, b := range blocks {
		if b.name == name {
			return b, true
		}
	}
	return block{}, false
}

// splitFields splits a block body on any of seps, strips all whitespace from each
// field and drops empty ones. Each field keeps the position of its first byte.
func splitFields(b block, seps string) []field {
	var fields []field
	s := newScanner([]byte(b.body), b.bodyPos)

	var cur strings.Builder
	var curPos Pos
	started := false

	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, field{text: cur.String(), pos: curPos})
		}
		cur.Reset()
		started = false
	}

	for !s.eof() {
		p := s.pos(b.bodyPos.Offset)
		c := s.advance()
		switch {
		case strings.IndexByte(seps, c) >= 0:
			flush()
		case isSpace(c):
		default:
			if !started {
				curPos = p
				started = true
			}
			cur.WriteByte(c)
		}
	}
	flush()
	return fields
}
