// Package quality checks whether an extraction is good enough to ship.
// Missing sections are data, not faults; this is where someone decides
// whether that data is acceptable.
package quality

import (
	"fmt"
	"strings"

	"github.com/dgallion1/secdiff/internal/filing"
)

// Report is the outcome of validating one filing pair.
type Report struct {
	Valid  bool     `json:"is_valid"`
	Issues []string `json:"issues"`
}

// Validator applies per-section minimum word counts and content-shape
// checks. The newer filing is the one users paid to analyze, so its
// failures are always flagged; older-filing failures only matter when the
// newer filing shares them.
type Validator struct {
	minWords map[filing.Section]int
}

// DefaultMinWords holds per-section minimum word counts, tuned against
// real filings.
func DefaultMinWords() map[filing.Section]int {
	return map[filing.Section]int{
		filing.SectionBusiness:    1000,
		filing.SectionRiskFactors: 3000, // usually the longest section
		filing.SectionMDA:         3000,
		filing.SectionFinancials:  2000, // lowered: some are pointers
	}
}

// NewValidator builds a Validator; nil minWords uses the defaults.
func NewValidator(minWords map[filing.Section]int) *Validator {
	if minWords == nil {
		minWords = DefaultMinWords()
	}
	return &Validator{minWords: minWords}
}

// numericRatioCeiling is the share of digit-bearing words above which a
// section was probably extracted as tables instead of prose.
const numericRatioCeiling = 0.8

// Validate checks both extractions. newer is the filing under analysis;
// older is its predecessor.
func (v *Validator) Validate(newer, older filing.SectionMap) Report {
	var issues []string

	issues = append(issues, missingSections("newer", newer)...)
	issues = append(issues, missingSections("older", older)...)

	for _, name := range filing.Sections() {
		minWords, ok := v.minWords[name]
		if !ok {
			continue
		}

		newerWords := newer.WordCount(name)
		olderWords := older.WordCount(name)

		if _, present := newer[name]; present && newerWords < minWords {
			issues = append(issues, fmt.Sprintf(
				"%s (newer): only %d words (expected %d+), extraction likely failed",
				name, newerWords, minWords))
		}
		if _, present := older[name]; present && olderWords < minWords && newerWords < minWords {
			issues = append(issues, fmt.Sprintf(
				"%s: both filings too short (newer: %d, older: %d, expected %d+)",
				name, newerWords, olderWords, minWords))
		}
	}

	for name, content := range newer {
		if ratio, ok := numericRatio(content); ok && ratio > numericRatioCeiling {
			issues = append(issues, fmt.Sprintf(
				"%s (newer): appears to be mostly tables/numbers (%.0f%% numeric content)",
				name, ratio*100))
		}
	}

	return Report{Valid: len(issues) == 0, Issues: issues}
}

func missingSections(label string, m filing.SectionMap) []string {
	var missing []string
	for _, name := range filing.Sections() {
		if _, ok := m[name]; !ok {
			missing = append(missing, string(name))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%s filing: missing sections %s", label, strings.Join(missing, ", "))}
}

// numericRatio returns the fraction of words containing a digit. Sections
// with too few words to judge return ok=false.
func numericRatio(content string) (float64, bool) {
	words := strings.Fields(content)
	if len(words) <= 100 {
		return 0, false
	}
	numeric := 0
	for _, w := range words {
		if strings.ContainsAny(w, "0123456789") {
			numeric++
		}
	}
	return float64(numeric) / float64(len(words)), true
}
