package sparse

import (
	"strings"
	"unicode"

	"hybridrag/internal/rag/lang"
)

// stopwords maps a language tag to its stopword set. Entries are
// deliberately small — enough to exercise the tokenizer's filtering path
// without pretending to be a linguistics-grade list.
var stopwords = map[string]map[string]bool{
	"en": setOf("a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
		"to", "was", "were", "will", "with"),
	"es": setOf("de", "la", "que", "el", "en", "y", "a", "los", "del", "se",
		"las", "por", "un", "para", "con", "no", "una", "su", "al", "lo"),
	"ar": setOf("في", "من", "على", "إلى", "عن", "أن", "إن", "هذا", "هذه",
		"ذلك", "تلك", "التي", "الذي", "كان", "كانت"),
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Tokenize splits text into lowercase (for cased scripts) word tokens,
// stripping Arabic diacritics/tatweel and language-specific stopwords, and
// dropping tokens of length <= 1 after stripping.
func Tokenize(text, language string) []string {
	stripped := lang.StripArabicDiacritics(text)
	stops := stopwords[strings.ToLower(language)]

	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := cur.String()
		cur.Reset()
		if isCasedScript(tok) {
			tok = strings.ToLower(tok)
		}
		if len([]rune(tok)) <= 1 {
			return
		}
		if stops[tok] {
			return
		}
		out = append(out, tok)
	}
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}

// isCasedScript reports whether tok contains any Latin/Cyrillic/Greek letter,
// the scripts for which lowercasing is meaningful.
func isCasedScript(tok string) bool {
	for _, r := range tok {
		if unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Cyrillic, r) || unicode.Is(unicode.Greek, r) {
			return true
		}
	}
	return false
}
