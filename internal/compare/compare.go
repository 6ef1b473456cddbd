// Package compare classifies section pairs across two filings into
// structured change records, suppressing diffs too small to be meaningful.
package compare

import (
	"fmt"
	"strings"

	"github.com/dgallion1/secdiff/internal/diff"
	"github.com/dgallion1/secdiff/internal/filing"
)

// Status classifies what happened to a section between filings.
type Status string

const (
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusModified  Status = "modified"
	StatusUnchanged Status = "unchanged"
)

// ChangeRecord is the per-section output consumed by the summarization
// collaborator. Added/Removed are empty exactly when Status is unchanged.
type ChangeRecord struct {
	Status               Status `json:"status"`
	Added                string `json:"added_content"`
	Removed              string `json:"removed_content"`
	HasMeaningfulChanges bool   `json:"has_meaningful_changes"`
	Summary              string `json:"summary"`
}

// DefaultMinChangeLength is the noise floor: when both sides of a diff are
// shorter than this, the change is pure rewording and reads as unchanged.
const DefaultMinChangeLength = 50

// Comparator compares the section maps of two filings.
type Comparator struct {
	engine          *diff.Engine
	minChangeLength int
}

// NewComparator builds a Comparator around a diff engine. minChangeLength
// <= 0 falls back to the default floor.
func NewComparator(engine *diff.Engine, minChangeLength int) *Comparator {
	if minChangeLength <= 0 {
		minChangeLength = DefaultMinChangeLength
	}
	return &Comparator{engine: engine, minChangeLength: minChangeLength}
}

// Compare produces a ChangeRecord for every section present in either
// filing. Sections absent from both are omitted entirely.
func (c *Comparator) Compare(older, newer filing.SectionMap) map[filing.Section]ChangeRecord {
	results := make(map[filing.Section]ChangeRecord)

	for _, name := range filing.Sections() {
		oldContent := older[name]
		newContent := newer[name]

		switch {
		case oldContent == "" && newContent == "":
			continue
		case oldContent == "":
			results[name] = ChangeRecord{
				Status:               StatusAdded,
				Added:                newContent,
				HasMeaningfulChanges: true,
				Summary:              "Entire section is new",
			}
		case newContent == "":
			results[name] = ChangeRecord{
				Status:               StatusRemoved,
				Removed:              oldContent,
				HasMeaningfulChanges: true,
				Summary:              "Entire section was removed",
			}
		default:
			results[name] = c.compareOne(oldContent, newContent)
		}
	}

	return results
}

// compareOne diffs one section present in both filings and applies the
// noise floor.
func (c *Comparator) compareOne(oldContent, newContent string) ChangeRecord {
	d := c.engine.Diff(oldContent, newContent)

	if !d.HasChanges {
		return ChangeRecord{
			Status:  StatusUnchanged,
			Summary: "No material changes detected",
		}
	}

	if len(d.Added) < c.minChangeLength && len(d.Removed) < c.minChangeLength {
		return ChangeRecord{
			Status:  StatusUnchanged,
			Summary: "Only minor wording changes detected",
		}
	}

	return ChangeRecord{
		Status:               StatusModified,
		Added:                d.Added,
		Removed:              d.Removed,
		HasMeaningfulChanges: true,
		Summary:              fmt.Sprintf("Changes detected: ~%d chars added, ~%d chars removed", len(d.Added), len(d.Removed)),
	}
}

// Render formats one change record as a human-readable report block.
func (r ChangeRecord) Render(name filing.Section) string {
	if r.Status == StatusUnchanged {
		return fmt.Sprintf("%s: No material changes", name)
	}

	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "\n%s\n%s\n%s\n\n", rule, name, rule)
	fmt.Fprintf(&b, "Status: %s\n", strings.ToUpper(string(r.Status)))
	fmt.Fprintf(&b, "Summary: %s\n\n", r.Summary)

	if r.Removed != "" {
		b.WriteString("--- REMOVED CONTENT ---\n")
		b.WriteString(snippet(r.Removed, 500))
		b.WriteString("\n\n")
	}
	if r.Added != "" {
		b.WriteString("+++ ADDED CONTENT +++\n")
		b.WriteString(snippet(r.Added, 500))
		b.WriteString("\n\n")
	}
	return b.String()
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n... (truncated)"
}
