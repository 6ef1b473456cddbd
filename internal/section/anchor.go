package section

import (
	"fmt"
	"strings"

	"github.com/dgallion1/secdiff/internal/filing"
)

// Anchor lookahead: a real section body has substantial prose right after
// the anchor; a TOC mention is followed by page numbers within a line or
// two.
const (
	anchorLookahead  = 2000
	anchorMinContent = 1000
	paginationWindow = 200
	paginationMarker = "page"
)

// locateByAnchor finds a section whose nominal heading is frequently a
// one-line forwarding pointer. The start is the first anchor occurrence
// with qualifying content after it; the end is the first boundary past the
// content floor that survives the cross-reference filter.
func (l *Locator) locateByAnchor(doc *filing.Document, prof Profile) (Span, error) {
	lower := doc.Lower()

	start := -1
	for _, anchor := range prof.Anchors {
		for _, m := range anchor.FindAllStringIndex(lower, -1) {
			if anchorQualifies(lower, m[0]) {
				start = m[0]
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return Span{}, fmt.Errorf("%s: %w", prof.Name, ErrAnchorNotFound)
	}

	end := len(lower)
	for _, re := range prof.Boundaries {
		for _, m := range re.FindAllStringIndex(lower, -1) {
			pos := m[0]
			if pos <= start+prof.ContentFloor {
				continue
			}
			if l.isCrossReference(lower, pos) {
				continue
			}
			end = pos
			break
		}
		if end < len(lower) {
			break
		}
	}

	if end-start < prof.SanityFloor {
		return Span{}, fmt.Errorf("%s: span only %d chars (floor %d): %w",
			prof.Name, end-start, prof.SanityFloor, ErrNotFound)
	}

	return Span{
		Start: start,
		End:   end,
		Text:  strings.TrimSpace(doc.Text()[start:end]),
	}, nil
}

// anchorQualifies rejects anchor occurrences that are TOC or cross-reference
// mentions: the real body has a long run of content after the anchor and no
// pagination marker right at the top.
func anchorQualifies(lower string, pos int) bool {
	end := pos + anchorLookahead
	if end > len(lower) {
		end = len(lower)
	}
	lookahead := lower[pos:end]
	if len(lookahead) <= anchorMinContent {
		return false
	}
	head := lookahead
	if len(head) > paginationWindow {
		head = head[:paginationWindow]
	}
	return !strings.Contains(head, paginationMarker)
}
