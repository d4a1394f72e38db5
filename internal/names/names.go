// Package names normalizes identifiers into their canonical form.
//
// Weft treats declaration and member names that differ only in casing
// convention as the same name: StoreInfo, store_info and STORE_INFO all
// canonicalize to "store_info" and therefore collide. Every name scope in
// the compiler keys on the canonical form and keeps the raw spelling for
// diagnostics.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Canonical converts an identifier to canonical snake_case.
//
// The input is NFC-normalized first so visually identical spellings share
// one canonical form. Word boundaries are underscores, an upper-case rune
// following a lower-case rune or digit, and the last upper-case rune of an
// acronym run when a lower-case rune follows (HTTPServer -> http_server).
func Canonical(name string) string {
	name = norm.NFC.String(name)
	runes := []rune(name)

	var b strings.Builder
	b.Grow(len(name) + 4)
	newWord := false
	for i, r := range runes {
		if r == '_' {
			newWord = true
			continue
		}
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			prevUpper := i > 0 && unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (prevUpper && nextLower) {
				newWord = true
			}
		}
		if newWord && b.Len() > 0 {
			b.WriteByte('_')
		}
		newWord = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Identifier pairs a raw spelling with its canonical form.
type Identifier struct {
	Raw       string
	Canonical string
}

func NewIdentifier(raw string) Identifier {
	return Identifier{Raw: raw, Canonical: Canonical(raw)}
}

// LibraryParts splits a dotted library name into its components.
func LibraryParts(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, ".")
}
