// Package diff computes line-level and chunk-level differences between two
// versions of a section's text, with a size-adaptive strategy: documents
// range from tens of thousands to over a million characters, and a straight
// line alignment over the largest ones is quadratic.
package diff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dgallion1/secdiff/internal/normalize"
)

// Result is a structured diff between two cleaned texts.
type Result struct {
	Added      string
	Removed    string
	Unchanged  string
	HasChanges bool
}

// Config controls diff behavior.
type Config struct {
	SizeCeiling int // at/above this many chars, switch to the chunked strategy
	ChunkSize   int // target chunk size when grouping paragraphs
	MaxOutput   int // per-side output cap in chars
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SizeCeiling: 100_000,
		ChunkSize:   20_000,
		MaxOutput:   10_000,
	}
}

// Engine computes diffs. It is stateless apart from configuration and safe
// for concurrent use.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
	cfg Config
}

// NewEngine creates an Engine with the given config; zero fields fall back
// to defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.SizeCeiling <= 0 {
		cfg.SizeCeiling = def.SizeCeiling
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.MaxOutput <= 0 {
		cfg.MaxOutput = def.MaxOutput
	}
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &Engine{dmp: dmp, cfg: cfg}
}

// Diff compares two texts. Both sides are whitespace-canonicalized first so
// formatting drift between filings never reads as a change.
func (e *Engine) Diff(oldText, newText string) Result {
	oldClean := normalize.Normalize(oldText)
	newClean := normalize.Normalize(newText)

	var res Result
	if len(oldClean) >= e.cfg.SizeCeiling || len(newClean) >= e.cfg.SizeCeiling {
		res = e.chunkedDiff(oldClean, newClean)
	} else {
		res = e.lineDiff(oldClean, newClean)
	}

	res.Added = capOutput(res.Added, e.cfg.MaxOutput)
	res.Removed = capOutput(res.Removed, e.cfg.MaxOutput)
	res.Unchanged = capOutput(res.Unchanged, e.cfg.MaxOutput)
	return res
}

// lineDiff aligns the two texts line by line (LCS-style) and buckets lines
// into added, removed, and unchanged, preserving relative order.
func (e *Engine) lineDiff(oldClean, newClean string) Result {
	// Both sides get a trailing newline so the final line tokenizes the
	// same whether or not text is appended after it; without it a pure
	// append reads as remove-then-add of the last line.
	c1, c2, lineArray := e.dmp.DiffLinesToChars(oldClean+"\n", newClean+"\n")
	diffs := e.dmp.DiffMain(c1, c2, false)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	var added, removed, unchanged []string
	for _, d := range diffs {
		text := strings.TrimRight(d.Text, "\n")
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added = append(added, text)
		case diffmatchpatch.DiffDelete:
			removed = append(removed, text)
		case diffmatchpatch.DiffEqual:
			unchanged = append(unchanged, text)
		}
	}

	return Result{
		Added:      strings.Join(added, "\n"),
		Removed:    strings.Join(removed, "\n"),
		Unchanged:  strings.Join(unchanged, "\n"),
		HasChanges: len(added) > 0 || len(removed) > 0,
	}
}

const truncationMarker = "\n\n[... additional changes truncated ...]"

// capOutput truncates s to max bytes with an explicit marker; content is
// never silently dropped.
func capOutput(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker
}
