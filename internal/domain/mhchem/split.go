package mhchem

import (
	"strings"
	"unicode"
)

// span is a slice of the normalized input with its byte offset.
type span struct {
	text   string
	offset int
}

var arrowTokens = []string{"<=>", "<->", "->"}

// splitArrow finds the arrows outside braces. It returns the sides and the
// arrow tokens between them.
func splitArrow(s string) ([]span, []string) {
	var (
		sides  []span
		arrows []string
		depth  int
		start  int
	)
	for i := 0; i < len(s); {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 {
			if tok := arrowAt(s, i); tok != "" {
				sides = append(sides, span{text: s[start:i], offset: start})
				arrows = append(arrows, tok)
				i += len(tok)
				start = i
				continue
			}
		}
		i++
	}
	sides = append(sides, span{text: s[start:], offset: start})
	return sides, arrows
}

func arrowAt(s string, i int) string {
	for _, tok := range arrowTokens {
		if strings.HasPrefix(s[i:], tok) {
			return tok
		}
	}
	return ""
}

// splitTerms cuts one side into terms. A '+' separates terms only when it
// follows whitespace (or starts the side); a '+' glued to a formula is a
// charge, as in "H+ + OH-".
func splitTerms(side span) []span {
	var (
		terms []span
		depth int
		start int
	)
	s := side.text
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '+':
			if depth > 0 {
				continue
			}
			if i > 0 && !unicode.IsSpace(rune(s[i-1])) {
				continue
			}
			terms = append(terms, trimSpan(s[start:i], side.offset+start))
			start = i + 1
		}
	}
	return append(terms, trimSpan(s[start:], side.offset+start))
}

func trimSpan(s string, offset int) span {
	lead := len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
	return span{text: strings.TrimSpace(s), offset: offset + lead}
}
