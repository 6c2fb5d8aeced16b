// Package extract defines the Entity Extractor adapter (spec component C2):
// a pluggable contract for producing entity mentions from chunk text, plus a
// deterministic rule-based default implementation.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"hybridrag/internal/rag/lang"
)

// EntityType is one of the fixed entity categories the core recognizes.
type EntityType string

const (
	Person       EntityType = "PERSON"
	Organization EntityType = "ORGANIZATION"
	Location     EntityType = "LOCATION"
	Concept      EntityType = "CONCEPT"
	Product      EntityType = "PRODUCT"
	Event        EntityType = "EVENT"
	Date         EntityType = "DATE"
	Other        EntityType = "OTHER"
)

// Span is the [start, end) byte offset of a mention within its chunk text.
type Span struct {
	Start int
	End   int
}

// Mention is one extracted entity occurrence.
type Mention struct {
	CanonicalName string
	Type          EntityType
	Confidence    float64
	Span          Span
}

// Extractor is the contract the core depends on. Implementations may be
// rule-based, model-based, or LLM-assisted; the core only requires that a
// given backend version is deterministic so tests are reproducible.
type Extractor interface {
	Extract(chunkText, language string) ([]Mention, error)
}

var (
	// capitalizedRunRe matches runs of Title-Cased words, a cheap proxy for
	// named entities in Latin-script text (PERSON/ORGANIZATION/LOCATION).
	capitalizedRunRe = regexp.MustCompile(`\b[A-Z][a-zA-Z'’.-]*(?:\s+[A-Z][a-zA-Z'’.-]*){0,3}\b`)
	// dateRe matches common numeric and month-name date shapes.
	dateRe = regexp.MustCompile(`\b(?:\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})\b`)

	orgSuffixes = []string{"Inc.", "Inc", "Corp.", "Corp", "LLC", "Ltd.", "Ltd", "Company", "Foundation", "University", "Institute"}
	locKeywords = []string{"City", "Street", "Avenue", "River", "Mountain", "Ocean", "County", "Island", "Republic"}
)

// RuleBasedExtractor is the default deterministic Extractor: it finds
// capitalized word runs, classifies them heuristically by trailing keyword,
// and recognizes numeric/month-name dates. It never calls out to a network
// service, so ingestion never blocks on entity extraction.
type RuleBasedExtractor struct{}

// Extract implements Extractor. It never returns an error; the contract
// allows for one so model-backed implementations can surface failures that
// the coordinator treats as a non-fatal warning.
func (RuleBasedExtractor) Extract(chunkText, language string) ([]Mention, error) {
	var out []Mention
	seen := make(map[string]bool)

	for _, loc := range dateRe.FindAllStringIndex(chunkText, -1) {
		name := chunkText[loc[0]:loc[1]]
		key := "DATE\x00" + name
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Mention{CanonicalName: name, Type: Date, Confidence: 0.9, Span: Span{Start: loc[0], End: loc[1]}})
	}

	for _, loc := range capitalizedRunRe.FindAllStringIndex(chunkText, -1) {
		name := strings.TrimSpace(chunkText[loc[0]:loc[1]])
		if name == "" || isSentenceStartArtifact(chunkText, loc[0], name) {
			continue
		}
		typ, conf := classify(name)
		key := string(typ) + "\x00" + lang.FoldName(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Mention{CanonicalName: name, Type: typ, Confidence: conf, Span: Span{Start: loc[0], End: loc[1]}})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Span.Start != out[j].Span.Start {
			return out[i].Span.Start < out[j].Span.Start
		}
		return out[i].CanonicalName < out[j].CanonicalName
	})
	return out, nil
}

// isSentenceStartArtifact filters out single Title-Case words that are just
// the first word of a sentence (preceded by '.', '!', '?', or nothing, and
// not themselves multi-word).
func isSentenceStartArtifact(text string, start int, name string) bool {
	if strings.Contains(name, " ") {
		return false
	}
	if start == 0 {
		return true
	}
	prefix := strings.TrimRight(text[:start], " \n\t")
	if prefix == "" {
		return true
	}
	last := prefix[len(prefix)-1]
	return last == '.' || last == '!' || last == '?'
}

func classify(name string) (EntityType, float64) {
	for _, s := range orgSuffixes {
		if strings.HasSuffix(name, s) || strings.Contains(name, " "+s) {
			return Organization, 0.7
		}
	}
	for _, k := range locKeywords {
		if strings.Contains(name, k) {
			return Location, 0.65
		}
	}
	if strings.Contains(name, " ") {
		return Person, 0.55
	}
	return Concept, 0.4
}
