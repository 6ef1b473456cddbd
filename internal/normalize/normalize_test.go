package normalize

import (
	"strings"
	"testing"
)

func TestNormalize_CollapsesSpacesAndTabs(t *testing.T) {
	got := Normalize("Item 1.   Business\t\tOverview")
	want := "Item 1. Business Overview"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_TrimsLines(t *testing.T) {
	got := Normalize("  leading\ntrailing   \n  both  ")
	want := "leading\ntrailing\nboth"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_CollapsesBlankLineRuns(t *testing.T) {
	got := Normalize("first paragraph\n\n\n\n\nsecond paragraph")
	want := "first paragraph\n\nsecond paragraph"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_WhitespaceOnlyLinesBecomeBlank(t *testing.T) {
	// Lines of pure spaces must not survive as fake content between
	// paragraph breaks.
	got := Normalize("first\n   \n\t\n   \nsecond")
	want := "first\n\nsecond"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_CRLFAndCR(t *testing.T) {
	got := Normalize("one\r\ntwo\rthree")
	want := "one\ntwo\nthree"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Item 1.   Business\r\n\r\n\r\n  Overview of  operations  ",
		"a\n \n \nb",
		"",
		"   ",
		strings.Repeat("word  word\n\n\n", 50),
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n once: %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestHTMLFlattener_StripsTagsPreservesOrder(t *testing.T) {
	input := `<html><head><title>ignored</title><style>p{color:red}</style></head>
<body><h1>Item 1. Business</h1><p>We make <b>widgets</b> worldwide.</p>
<script>var x = 1;</script><p>Second paragraph.</p></body></html>`

	f := &HTMLFlattener{}
	text, err := f.Flatten(strings.NewReader(input), "filing.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Normalize(text)

	for _, banned := range []string{"<", "ignored", "color:red", "var x"} {
		if strings.Contains(got, banned) {
			t.Errorf("expected %q to be stripped, output: %q", banned, got)
		}
	}
	for _, want := range []string{"Item 1. Business", "We make widgets worldwide.", "Second paragraph."} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
	if strings.Index(got, "Item 1") > strings.Index(got, "Second paragraph") {
		t.Errorf("document order not preserved: %q", got)
	}
}

func TestHTMLFlattener_TableRowsBecomeLines(t *testing.T) {
	input := `<table><tr><td>Revenue</td><td>100</td></tr><tr><td>Cost</td><td>60</td></tr></table>`
	f := &HTMLFlattener{}
	text, err := f.Flatten(strings.NewReader(input), "t.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Normalize(text)
	if !strings.Contains(got, "\n") {
		t.Errorf("expected row break between table rows, got %q", got)
	}
}

func TestMarkdownFlattener_HeadingsAndParagraphs(t *testing.T) {
	input := "# Item 1. Business\n\nWe operate **globally** in many markets.\n\n- first\n- second\n"
	f := &MarkdownFlattener{}
	text, err := f.Flatten(strings.NewReader(input), "filing.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Normalize(text)

	if strings.Contains(got, "#") || strings.Contains(got, "**") {
		t.Errorf("expected markdown syntax to be stripped, got %q", got)
	}
	for _, want := range []string{"Item 1. Business", "globally", "first", "second"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}

func TestMarkdownFlattener_CodeBlockKeepsRawLines(t *testing.T) {
	input := "Intro paragraph.\n\n```\nRevenue  2023  2024\nTotal    100   120\n```\n"
	f := &MarkdownFlattener{}
	text, err := f.Flatten(strings.NewReader(input), "filing.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Normalize(text)
	for _, want := range []string{"Intro paragraph.", "Revenue 2023 2024", "Total 100 120"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}

func TestForFile_Dispatch(t *testing.T) {
	cases := []struct {
		filename string
		wantErr  bool
	}{
		{"10k.htm", false},
		{"10K.HTML", false},
		{"filing.txt", false},
		{"filing.md", false},
		{"filing.markdown", false},
		{"filing.pdf", false},
		{"filing.docx", false},
		{"filing.exe", true},
		{"filing", true},
	}
	for _, c := range cases {
		_, err := ForFile(c.filename)
		if c.wantErr && err == nil {
			t.Errorf("%s: expected error, got nil", c.filename)
		}
		if !c.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", c.filename, err)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("filing.HTM") {
		t.Error("expected .HTM to be supported")
	}
	if !IsSupportedExtension("filing.markdown") {
		t.Error("expected .markdown to be supported")
	}
	if IsSupportedExtension("filing.xlsx") {
		t.Error("expected .xlsx to be unsupported")
	}
}

func TestDocument_TextPassthrough(t *testing.T) {
	got, err := Document(strings.NewReader("Item 1.   Business\n\n\n\nOverview"), "filing.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Item 1. Business\n\nOverview"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
