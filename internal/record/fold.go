package record

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain decomposes accented letters and strips the combining marks, so
// "é" becomes "e" instead of degrading to '?' during record construction.
var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldASCII transliterates accented letters in s to their base ASCII form.
// Characters with no ASCII decomposition are left in place and fall through
// to the usual '?' substitution when the record is built. On a transform
// error the input is returned unchanged.
func FoldASCII(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		return s
	}
	return out
}
