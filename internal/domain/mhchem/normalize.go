package mhchem

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var superscripts = map[rune]bool{
	'⁰': true, '¹': true, '²': true, '³': true, '⁴': true,
	'⁵': true, '⁶': true, '⁷': true, '⁸': true, '⁹': true,
	'⁺': true, '⁻': true,
}

var symbolReplacer = strings.NewReplacer(
	"⟶", "->",
	"→", "->",
	"⇌", "<=>",
	"⇄", "<=>",
	"↔", "<->",
	"⟷", "<->",
	"·", ".",
	"•", ".",
	"∙", ".",
	"*", ".",
	"−", "-",
	"–", "-",
)

// normalize rewrites typographic input into plain mhchem. Runs of
// superscript characters become a braced charge (SO₄²⁻ reads as
// SO4^{2-}); NFKC folds subscript digits and full-width forms to ASCII.
func normalize(input string) string {
	var b strings.Builder
	runes := []rune(input)
	for i := 0; i < len(runes); {
		if !superscripts[runes[i]] {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && superscripts[runes[j]] {
			j++
		}
		b.WriteString("^{")
		b.WriteString(norm.NFKC.String(string(runes[i:j])))
		b.WriteString("}")
		i = j
	}
	out := norm.NFKC.String(b.String())
	return symbolReplacer.Replace(out)
}
