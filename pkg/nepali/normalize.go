// Package nepali normalizes mixed Nepali/English OCR output. Devanagari is
// a low-resource script for OCR: engines emit decomposed code points,
// zero-width joiners and curly quotes inconsistently, so search and dedup
// need a canonical form.
package nepali

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var controlReplacer = strings.NewReplacer(
	"\u200B", "", // zero width space
	"\u200C", "", // zero width non-joiner
	"\u200D", "", // zero width joiner
	"\uFEFF", "", // byte order mark
	"\u00AD", "", // soft hyphen
)

var quoteReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
)

// Normalize produces the canonical form of OCR text: Unicode NFC, control
// characters stripped, quotes straightened, surrounding whitespace trimmed.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = controlReplacer.Replace(s)
	s = quoteReplacer.Replace(s)
	return strings.TrimSpace(s)
}

// devanagariZero is U+0966 (०); the ten digits are contiguous through
// U+096F (९).
const devanagariZero = '०'

// TransliterateDigits maps Devanagari digits to their ASCII equivalents,
// leaving every other character untouched. The result is the ASCII-digit
// mirror used for numeric search (case numbers, dates in Bikram Sambat).
func TransliterateDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= devanagariZero && r <= devanagariZero+9 {
			b.WriteRune('0' + (r - devanagariZero))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TextHash is the content hash of normalized text, used for integrity and
// dedup of extraction results.
func TextHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
