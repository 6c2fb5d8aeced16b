package extract

import "testing"

func TestRuleBasedExtractor_FindsDateAndOrg(t *testing.T) {
	text := "Marie Curie won the Nobel Prize on December 10, 1903, while working at the Sorbonne University."
	mentions, err := RuleBasedExtractor{}.Extract(text, "en")
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	var gotDate, gotOrg bool
	for _, m := range mentions {
		if m.Type == Date {
			gotDate = true
		}
		if m.Type == Organization {
			gotOrg = true
		}
	}
	if !gotDate {
		t.Fatalf("expected a DATE mention, got %+v", mentions)
	}
	if !gotOrg {
		t.Fatalf("expected an ORGANIZATION mention, got %+v", mentions)
	}
}

func TestRuleBasedExtractor_DeterministicOrdering(t *testing.T) {
	text := "Albert Einstein met Niels Bohr in Copenhagen in 1920."
	a, err := RuleBasedExtractor{}.Extract(text, "en")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	b, err := RuleBasedExtractor{}.Extract(text, "en")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("non-deterministic mention count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].CanonicalName != b[i].CanonicalName || a[i].Type != b[i].Type {
			t.Fatalf("mention %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRuleBasedExtractor_EmptyTextYieldsNoMentions(t *testing.T) {
	mentions, err := RuleBasedExtractor{}.Extract("", "en")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(mentions) != 0 {
		t.Fatalf("expected no mentions for empty text, got %+v", mentions)
	}
}
