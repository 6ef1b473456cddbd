package section

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/dgallion1/secdiff/internal/filing"
)

// prose returns at least n characters of filler text that contains no item
// tokens and no cross-reference cues.
func prose(n int) string {
	const sentence = "the company manufactures and distributes consumer products across global markets. "
	return strings.Repeat(sentence, n/len(sentence)+1)
}

func TestLocate_Business_PrefersBodyOverTOC(t *testing.T) {
	var b strings.Builder
	b.WriteString("table of contents\n")
	b.WriteString("Item 1. Business 3\n")
	b.WriteString("Item 1A. Risk Factors 15\n")
	b.WriteString("Item 2. Properties 30\n")
	b.WriteString(prose(48000))
	bodyStart := b.Len()
	b.WriteString("Item 1. Business\n\n")
	b.WriteString(prose(15000))
	b.WriteString("Item 1A. Risk Factors\n")
	b.WriteString(prose(5000))

	doc := filing.NewDocument("t", b.String())
	span, err := NewLocator().Locate(doc, filing.SectionBusiness)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if span.Start != bodyStart {
		t.Errorf("expected span to start at body heading %d, got %d", bodyStart, span.Start)
	}
	if span.End-span.Start < 15000 {
		t.Errorf("expected span of at least 15000 chars, got %d", span.End-span.Start)
	}
	if !strings.HasPrefix(span.Text, "Item 1. Business") {
		t.Errorf("expected span text to start with the heading, got %q", span.Text[:40])
	}
}

func TestLocate_Deterministic(t *testing.T) {
	var b strings.Builder
	b.WriteString("Item 1. Business 3\nItem 2. Properties 9\n")
	b.WriteString(prose(2000))
	b.WriteString("Item 1. Business\n")
	b.WriteString(prose(4000))
	b.WriteString("Item 2. Properties\n")
	doc := filing.NewDocument("t", b.String())

	l := NewLocator()
	first, err := l.Locate(doc, filing.SectionBusiness)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := l.Locate(doc, filing.SectionBusiness)
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
		if again != first {
			t.Fatalf("run %d: span differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestLocate_TieBreaksToEarliestStart(t *testing.T) {
	block := "Item 1. Business\n" + prose(3000) + "Item 2. Properties\n"
	doc := filing.NewDocument("t", block+block)

	span, err := NewLocator().Locate(doc, filing.SectionBusiness)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if span.Start != 0 {
		t.Errorf("expected earliest candidate to win the tie, got start %d", span.Start)
	}
}

func TestLocate_HeadingNeverOccurs(t *testing.T) {
	doc := filing.NewDocument("t", prose(5000))
	_, err := NewLocator().Locate(doc, filing.SectionBusiness)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocate_AllCandidatesBelowThreshold(t *testing.T) {
	// Only TOC-sized mentions exist; the diagnostic must still unwrap to
	// ErrNotFound.
	text := "Item 1. Business 4\nItem 2. Properties 9\n" + prose(5000)
	doc := filing.NewDocument("t", text)
	_, err := NewLocator().Locate(doc, filing.SectionBusiness)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "below") {
		t.Errorf("expected diagnostic about candidate lengths, got %q", err.Error())
	}
}

func TestLocate_UnknownSection(t *testing.T) {
	doc := filing.NewDocument("t", prose(2000))
	_, err := NewLocator().Locate(doc, filing.Section("Item 99"))
	if err == nil {
		t.Fatal("expected error for unknown section")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("unknown section is a contract error, not ErrNotFound")
	}
}

func TestBoundaryMatches_FiltersCrossReferences(t *testing.T) {
	text := "liquidity risks are discussed in item 8 of this report. item 8\nconsolidated financial statements follow."
	l := NewLocator()
	re := regexp.MustCompile(`item\s*8\b`)

	got := l.boundaryMatches(text, []*regexp.Regexp{re})

	wantPos := strings.LastIndex(text, "item 8")
	if len(got) != 1 {
		t.Fatalf("expected 1 surviving boundary, got %d (%v)", len(got), got)
	}
	if got[0] != wantPos {
		t.Errorf("expected boundary at %d (the real heading), got %d", wantPos, got[0])
	}
}

func TestBoundaryMatches_SeeItemFiltered(t *testing.T) {
	text := "for additional information see item 2 herein. " + prose(100) + "item 2\nproperties"
	l := NewLocator()
	re := regexp.MustCompile(`item\s*2\b`)

	got := l.boundaryMatches(text, []*regexp.Regexp{re})
	if len(got) != 1 {
		t.Fatalf("expected 1 surviving boundary, got %d", len(got))
	}
	if got[0] != strings.LastIndex(text, "item 2") {
		t.Errorf("expected the bare heading to survive, got position %d", got[0])
	}
}

func TestLocate_MDA_SkipsPaginatedTOCAnchor(t *testing.T) {
	var b strings.Builder
	b.WriteString("management's discussion and analysis of financial condition and results of operations page 45\n")
	b.WriteString(prose(3000))
	bodyStart := b.Len()
	b.WriteString("Management's Discussion and Analysis of Financial Condition and Results of Operations\n\n")
	b.WriteString(prose(12000))
	b.WriteString("Item 8. Financial Statements and Supplementary Data\n")
	b.WriteString(prose(500))

	doc := filing.NewDocument("t", b.String())
	span, err := NewLocator().Locate(doc, filing.SectionMDA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if span.Start != bodyStart {
		t.Errorf("expected anchor at body title %d, got %d", bodyStart, span.Start)
	}
}

func TestLocate_Financials_BoundarySkipsCrossReference(t *testing.T) {
	var b strings.Builder
	b.WriteString("Report of Independent Registered Public Accounting Firm\n\n")
	b.WriteString(prose(10600))
	b.WriteString("for detail see Item 9 of this report. ")
	b.WriteString(prose(1400))
	wantEnd := b.Len()
	b.WriteString("Item 9. Changes in and Disagreements with Accountants\n")
	b.WriteString(prose(500))

	doc := filing.NewDocument("t", b.String())
	span, err := NewLocator().Locate(doc, filing.SectionFinancials)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if span.Start != 0 {
		t.Errorf("expected span to start at the auditor's report, got %d", span.Start)
	}
	if span.End != wantEnd {
		t.Errorf("expected span to end at the real Item 9 heading %d, got %d", wantEnd, span.End)
	}
}

func TestLocate_Financials_SanityFloor(t *testing.T) {
	// Anchor is present but only a truncated body follows.
	text := "Report of Independent Registered Public Accounting Firm\n\n" + prose(3000)
	doc := filing.NewDocument("t", text)
	_, err := NewLocator().Locate(doc, filing.SectionFinancials)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocate_MDA_AllAnchorsPaginated(t *testing.T) {
	text := "management's discussion and analysis of financial condition and results of operations page 45\n" + prose(3000)
	doc := filing.NewDocument("t", text)
	_, err := NewLocator().Locate(doc, filing.SectionMDA)
	if !errors.Is(err, ErrAnchorNotFound) {
		t.Fatalf("expected ErrAnchorNotFound, got %v", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected ErrAnchorNotFound to unwrap to ErrNotFound")
	}
}

func TestExtract_PartialDocument(t *testing.T) {
	var b strings.Builder
	b.WriteString("Item 1. Business\n")
	b.WriteString(prose(3000))
	b.WriteString("Item 1A. Risk Factors\n")
	b.WriteString(prose(3000))
	b.WriteString("Item 2. Properties\n")
	b.WriteString(prose(500))

	doc := filing.NewDocument("t", b.String())
	sections, failures := NewLocator().Extract(doc)

	for _, want := range []filing.Section{filing.SectionBusiness, filing.SectionRiskFactors} {
		if _, ok := sections[want]; !ok {
			t.Errorf("expected %s to be extracted, failures: %v", want, failures)
		}
	}
	for _, missing := range []filing.Section{filing.SectionMDA, filing.SectionFinancials} {
		if _, ok := sections[missing]; ok {
			t.Errorf("expected %s to be absent", missing)
		}
		if err, ok := failures[missing]; !ok || !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound failure for %s, got %v", missing, err)
		}
	}
}
