// Package lang holds small, dependency-light text normalization helpers
// shared by the chunker, the sparse tokenizer, and entity name matching.
package lang

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// arabicDiacritics are the Arabic combining marks (tashkeel) and the tatweel
// elongation character, stripped before tokenization/matching.
var arabicDiacritics = map[rune]bool{
	0x0610: true, 0x0611: true, 0x0612: true, 0x0613: true, 0x0614: true,
	0x0615: true, 0x0616: true, 0x0617: true, 0x0618: true, 0x0619: true,
	0x061A: true, 0x064B: true, 0x064C: true, 0x064D: true, 0x064E: true,
	0x064F: true, 0x0650: true, 0x0651: true, 0x0652: true, 0x0653: true,
	0x0654: true, 0x0655: true, 0x0656: true, 0x0657: true, 0x0658: true,
	0x0670: true,
	0x0640: true, // ARABIC TATWEEL
}

// NFC applies Unicode canonical composition normalization.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// FoldName lowercases, strips diacritics (Arabic tashkeel/tatweel and Latin
// combining marks), and collapses whitespace — used to compare entity
// canonical names case/diacritic-insensitively.
func FoldName(s string) string {
	s = norm.NFKD.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if arabicDiacritics[r] || unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// StripArabicDiacritics removes tashkeel and tatweel without lowercasing or
// otherwise folding the string — used by the tokenizer, which lowercases
// separately for cased scripts only.
func StripArabicDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if arabicDiacritics[r] {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
