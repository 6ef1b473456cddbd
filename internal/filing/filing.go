package filing

import (
	"strings"
	"time"
)

// Section is one of the four legally defined 10-K items this service tracks.
type Section string

const (
	SectionBusiness    Section = "Item 1"  // Business description
	SectionRiskFactors Section = "Item 1A" // Risk Factors
	SectionMDA         Section = "Item 7"  // Management's Discussion and Analysis
	SectionFinancials  Section = "Item 8"  // Financial Statements
)

// Sections returns all tracked sections in filing order.
func Sections() []Section {
	return []Section{SectionBusiness, SectionRiskFactors, SectionMDA, SectionFinancials}
}

// Valid reports whether s is a recognized section name.
func (s Section) Valid() bool {
	switch s {
	case SectionBusiness, SectionRiskFactors, SectionMDA, SectionFinancials:
		return true
	}
	return false
}

// Metadata identifies a filing. It is carried through untouched for
// downstream attribution; nothing in the core reads it.
type Metadata struct {
	Ticker      string    `json:"ticker"`
	CompanyName string    `json:"company_name,omitempty"`
	Accession   string    `json:"accession,omitempty"`
	FilingDate  time.Time `json:"filing_date,omitempty"`
}

// Document is a flattened filing: its full visible text in document order,
// plus a cached lowercase form for case-insensitive search. Immutable once
// constructed.
type Document struct {
	id    string
	text  string
	lower string
}

// NewDocument builds a Document from already-normalized flat text.
func NewDocument(id, text string) *Document {
	return &Document{
		id:    id,
		text:  text,
		lower: strings.ToLower(text),
	}
}

func (d *Document) ID() string    { return d.id }
func (d *Document) Text() string  { return d.text }
func (d *Document) Lower() string { return d.lower }
func (d *Document) Len() int      { return len(d.text) }

// SectionMap holds the extracted text per section for one filing. Sections
// that could not be located are simply absent.
type SectionMap map[Section]string

// WordCount returns the number of whitespace-separated words in a section,
// or 0 if the section is absent.
func (m SectionMap) WordCount(s Section) int {
	return len(strings.Fields(m[s]))
}
