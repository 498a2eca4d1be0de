package mhchem

import (
	"fmt"
	"strconv"
	"unicode"
)

const eof = rune(-1)

// scanner walks the runes of a single term.
type scanner struct {
	src []rune
	pos int
}

func newScanner(s string) *scanner {
	return &scanner{src: []rune(s)}
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.src) {
		return eof
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(n int) rune {
	if s.pos+n >= len(s.src) {
		return eof
	}
	return s.src[s.pos+n]
}

func (s *scanner) next() rune {
	r := s.peek()
	if r != eof {
		s.pos++
	}
	return r
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) accept(r rune) bool {
	if s.peek() == r {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) expect(r rune) error {
	if !s.accept(r) {
		return s.errorf("expected %q", r)
	}
	return nil
}

// digits consumes a run of ASCII digits. ok is false when there is no
// run; a run above MaxNumber is an error rather than a missing number.
func (s *scanner) digits() (n int, ok bool, err error) {
	start := s.pos
	for s.peek() >= '0' && s.peek() <= '9' {
		s.pos++
	}
	if s.pos == start {
		return 0, false, nil
	}
	if n, err = boundedInt(string(s.src[start:s.pos])); err != nil {
		return 0, false, &positionError{pos: start, msg: err.Error()}
	}
	return n, true, nil
}

// boundedInt parses a signed decimal whose magnitude is at most MaxNumber.
func boundedInt(text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil || n > MaxNumber || n < -MaxNumber {
		return 0, fmt.Errorf("number %q is out of range (limit %d)", text, MaxNumber)
	}
	return n, nil
}

// braced consumes either {…} or a single signed number and returns the
// enclosed text.
func (s *scanner) braced() (string, error) {
	if s.accept('{') {
		start := s.pos
		for s.peek() != '}' {
			if s.eof() {
				return "", s.errorf("unterminated brace")
			}
			s.pos++
		}
		text := string(s.src[start:s.pos])
		s.pos++
		return text, nil
	}
	start := s.pos
	if s.peek() == '-' || s.peek() == '+' {
		s.pos++
	}
	for unicode.IsDigit(s.peek()) {
		s.pos++
	}
	// ^2+ style charge: digits followed by the sign.
	if s.pos > start && (s.peek() == '+' || s.peek() == '-') && unicode.IsDigit(s.src[s.pos-1]) {
		s.pos++
	}
	if s.pos == start {
		return "", s.errorf("expected a number")
	}
	return string(s.src[start:s.pos]), nil
}

func (s *scanner) errorf(format string, args ...interface{}) error {
	return &positionError{pos: s.pos, msg: fmt.Sprintf(format, args...)}
}

type positionError struct {
	pos int
	msg string
}

func (e *positionError) Error() string {
	return fmt.Sprintf("at %d: %s", e.pos, e.msg)
}
