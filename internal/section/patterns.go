package section

import (
	"regexp"

	"github.com/dgallion1/secdiff/internal/filing"
)

// Profile describes how to find one section inside a flattened filing.
// All patterns are matched against the lowercased document text.
//
// Two location strategies exist. Heading-based sections set Heading and
// MinLength. Anchor-based sections (those whose own heading is frequently
// just a forwarding pointer) set Anchors, ContentFloor, and SanityFloor
// instead.
type Profile struct {
	Name filing.Section

	// Heading matches the section's own heading, e.g. "item 1a" as a
	// whole token. Every occurrence is a candidate start.
	Heading *regexp.Regexp

	// Anchors are content landmarks guaranteed to exist at the start of
	// the real section body. Tried in order; the first qualifying
	// occurrence wins.
	Anchors []*regexp.Regexp

	// Boundaries mark where the section ends. Tried in order; matches
	// that look like cross-references are discarded.
	Boundaries []*regexp.Regexp

	// MinLength is the smallest plausible body size for a heading-based
	// candidate. Shorter spans are TOC entries or stray mentions.
	MinLength int

	// ContentFloor is the minimum distance a boundary must sit past an
	// anchor, so a same-paragraph re-mention never terminates the span.
	ContentFloor int

	// SanityFloor is the hard minimum on an anchor-based span; anything
	// shorter is truncated content and reported as not found.
	SanityFloor int
}

// anchorBased reports whether this profile locates by content anchor.
func (p Profile) anchorBased() bool { return len(p.Anchors) > 0 }

// DefaultProfiles returns the built-in profiles for the four tracked
// sections. Thresholds were tuned against real filings; they exist to
// reject short false positives near the table of contents.
func DefaultProfiles() map[filing.Section]Profile {
	return map[filing.Section]Profile{
		filing.SectionBusiness: {
			Name:    filing.SectionBusiness,
			Heading: regexp.MustCompile(`item\s*1\b`),
			Boundaries: []*regexp.Regexp{
				regexp.MustCompile(`item\s*1a\b`),
				regexp.MustCompile(`item\s*2\b`),
			},
			MinLength: 1000,
		},
		filing.SectionRiskFactors: {
			Name:    filing.SectionRiskFactors,
			Heading: regexp.MustCompile(`item\s*1a\b`),
			Boundaries: []*regexp.Regexp{
				regexp.MustCompile(`item\s*1b\b`),
				regexp.MustCompile(`item\s*2\b`),
			},
			MinLength: 1000,
		},
		filing.SectionMDA: {
			Name: filing.SectionMDA,
			// Item 7 itself is often "see the Financial Section"; the
			// canonical full title marks the real content.
			Anchors: []*regexp.Regexp{
				regexp.MustCompile(`management['’]?s\s+discussion\s+and\s+analysis\s+of\s+financial\s+condition\s+and\s+results\s+of\s+operations`),
				regexp.MustCompile(`results\s+of\s+operations`),
			},
			Boundaries: []*regexp.Regexp{
				regexp.MustCompile(`item\s*7a\b`),
				regexp.MustCompile(`item\s*8\b`),
			},
			ContentFloor: 10000,
			SanityFloor:  5000,
		},
		filing.SectionFinancials: {
			Name: filing.SectionFinancials,
			// The auditor's report is required by the SEC and always
			// precedes the consolidated statements.
			Anchors: []*regexp.Regexp{
				regexp.MustCompile(`report\s+of\s+independent\s+registered\s+public\s+accounting\s+firm`),
				regexp.MustCompile(`independent\s+auditor`),
			},
			Boundaries: []*regexp.Regexp{
				regexp.MustCompile(`item\s*9\b`),
				regexp.MustCompile(`item\s*15\b`),
			},
			ContentFloor: 10000,
			SanityFloor:  5000,
		},
	}
}

// DefaultCrossReferencePatterns flag a boundary hit as an in-text reference
// like "see Item 8" rather than a real heading. They are matched against
// the ~50 characters immediately preceding the hit, so each pattern is
// anchored at the end: the cue must sit directly before the item token,
// otherwise an earlier reference in the same sentence would poison a real
// heading right after it.
func DefaultCrossReferencePatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`\bsee\s+$`),
		regexp.MustCompile(`\bin\s+$`),
		regexp.MustCompile(`\bto\s+$`),
		regexp.MustCompile(`\brefer(?:red|ring)?\s+to\s+$`),
		regexp.MustCompile(`\bdiscussed\s+in\s+$`),
		regexp.MustCompile(`\bincluded\s+in\s+$`),
		regexp.MustCompile(`\bdescribed\s+in\s+$`),
	}
}
