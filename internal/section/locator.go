// Package section locates the four tracked report items inside a flattened
// filing. The source documents have no machine-readable section boundaries:
// every heading also appears in the table of contents and in cross-references,
// so location is candidate generation followed by filtering.
package section

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/secdiff/internal/filing"
)

// ErrNotFound is returned when no candidate span met the section's
// constraints. It is a normal, expected outcome for documents whose
// structure does not match the heuristics; callers treat it as a missing
// map key, not a fault.
var ErrNotFound = errors.New("section not found")

// ErrAnchorNotFound is the anchor-extractor variant: no anchor occurrence
// had qualifying content after it. It unwraps to ErrNotFound.
var ErrAnchorNotFound = fmt.Errorf("no qualifying anchor: %w", ErrNotFound)

// Span is the chosen location of one section within one document.
type Span struct {
	Start int
	End   int
	Text  string
}

// Locator finds section spans using per-section profiles and a shared
// cross-reference filter. Locators are immutable after construction and
// safe for concurrent use.
type Locator struct {
	profiles map[filing.Section]Profile
	crossRef []*regexp.Regexp
}

// Option customizes a Locator.
type Option func(*Locator)

// WithProfile replaces the profile for one section.
func WithProfile(p Profile) Option {
	return func(l *Locator) { l.profiles[p.Name] = p }
}

// WithCrossReferencePatterns replaces the cross-reference phrase list.
func WithCrossReferencePatterns(patterns ...*regexp.Regexp) Option {
	return func(l *Locator) { l.crossRef = patterns }
}

// NewLocator builds a Locator with the default profiles and filters.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		profiles: DefaultProfiles(),
		crossRef: DefaultCrossReferencePatterns(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate finds the span of one section in the document. An unknown section
// name is a contract violation and returns a plain error; a document that
// doesn't match the heuristics returns an error unwrapping to ErrNotFound.
func (l *Locator) Locate(doc *filing.Document, name filing.Section) (Span, error) {
	prof, ok := l.profiles[name]
	if !ok {
		return Span{}, fmt.Errorf("unknown section %q", name)
	}
	if prof.anchorBased() {
		return l.locateByAnchor(doc, prof)
	}
	return l.locateByHeading(doc, prof)
}

// Extract locates every tracked section. Sections that cannot be found are
// absent from the map; their errors are returned alongside for diagnostics.
func (l *Locator) Extract(doc *filing.Document) (filing.SectionMap, map[filing.Section]error) {
	sections := make(filing.SectionMap)
	failures := make(map[filing.Section]error)
	for _, name := range filing.Sections() {
		span, err := l.Locate(doc, name)
		if err != nil {
			failures[name] = err
			continue
		}
		sections[name] = span.Text
	}
	return sections, failures
}

// locateByHeading implements the candidate-and-filter strategy: every
// heading occurrence paired with the nearest non-reference boundary after
// it, short pairs discarded, longest survivor wins.
func (l *Locator) locateByHeading(doc *filing.Document, prof Profile) (Span, error) {
	lower := doc.Lower()

	var starts []int
	for _, m := range prof.Heading.FindAllStringIndex(lower, -1) {
		starts = append(starts, m[0])
	}
	if len(starts) == 0 {
		return Span{}, fmt.Errorf("%s: heading never occurs: %w", prof.Name, ErrNotFound)
	}

	bounds := l.boundaryMatches(lower, prof.Boundaries)

	type candidate struct {
		start, end, length int
	}
	candidates := make([]candidate, 0, len(starts))
	for _, start := range starts {
		end := len(lower)
		for _, b := range bounds {
			if b > start {
				end = b
				break
			}
		}
		candidates = append(candidates, candidate{start: start, end: end, length: end - start})
	}

	best := candidate{length: -1}
	longest := 0
	for _, c := range candidates {
		if c.length > longest {
			longest = c.length
		}
		if c.length < prof.MinLength {
			continue
		}
		// Largest length wins; ties break to the earliest start so the
		// choice is deterministic.
		if c.length > best.length || (c.length == best.length && c.start < best.start) {
			best = c
		}
	}
	if best.length < 0 {
		return Span{}, fmt.Errorf("%s: all %d candidates below %d chars (longest %d): %w",
			prof.Name, len(candidates), prof.MinLength, longest, ErrNotFound)
	}

	return Span{
		Start: best.start,
		End:   best.end,
		Text:  strings.TrimSpace(doc.Text()[best.start:best.end]),
	}, nil
}

// boundaryMatches returns every boundary position that does not look like a
// cross-reference, sorted ascending.
func (l *Locator) boundaryMatches(lower string, boundaries []*regexp.Regexp) []int {
	var positions []int
	for _, re := range boundaries {
		for _, m := range re.FindAllStringIndex(lower, -1) {
			if !l.isCrossReference(lower, m[0]) {
				positions = append(positions, m[0])
			}
		}
	}
	sort.Ints(positions)
	return positions
}

// isCrossReference inspects the ~50 characters immediately before a boundary
// hit for phrases like "see Item 8" or "discussed in Item 8". The patterns
// are end-anchored, so only a cue directly preceding the hit counts.
func (l *Locator) isCrossReference(lower string, pos int) bool {
	before := pos - 50
	if before < 0 {
		before = 0
	}
	context := lower[before:pos]
	for _, re := range l.crossRef {
		if re.MatchString(context) {
			return true
		}
	}
	return false
}
