// Package normalize cleans user-entered names before they are stored or compared.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Name returns s in Unicode NFC form with surrounding whitespace trimmed and
// inner whitespace runs collapsed to one space. Case is preserved, so
// "Plato" and "plato" stay distinct names.
//
// NFC matters for exact-name lookups: "Zoë" typed on two different keyboards
// may arrive precomposed or decomposed.
func Name(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Username returns s in NFC form with surrounding whitespace trimmed.
func Username(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
