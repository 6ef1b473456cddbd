package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/secdiff/internal/compare"
	"github.com/dgallion1/secdiff/internal/filing"
	"github.com/dgallion1/secdiff/internal/normalize"
	"github.com/dgallion1/secdiff/internal/quality"
	"github.com/dgallion1/secdiff/internal/section"
)

// Worker runs the full analysis for one filing pair: normalize both raw
// documents, extract the tracked sections, compare them, and validate the
// extraction quality. All phases are CPU-bound; there is no I/O here.
type Worker struct {
	locator    *section.Locator
	comparator *compare.Comparator
	validator  *quality.Validator
	stats      *AnalysisStats
	log        *slog.Logger

	pdfFallback bool
}

func NewWorker(loc *section.Locator, comp *compare.Comparator, val *quality.Validator, stats *AnalysisStats, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{
		locator:     loc,
		comparator:  comp,
		validator:   val,
		stats:       stats,
		log:         log,
		pdfFallback: pdfFallback,
	}
}

// Process runs the analysis pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "ticker", job.Ticker)
	start := time.Now()

	older, newer := job.Filings()

	// Phase 1: Normalize
	job.SetStatus(StatusNormalizing, "normalizing")
	phase := time.Now()
	olderDoc, err := w.flatten(older)
	if err != nil {
		log.Error("normalize older filing failed", "filename", older.Filename, "error", err)
		job.AddError(fmt.Sprintf("normalize older: %s", err))
		job.SetStatus(StatusFailed, "normalizing")
		return
	}
	newerDoc, err := w.flatten(newer)
	if err != nil {
		log.Error("normalize newer filing failed", "filename", newer.Filename, "error", err)
		job.AddError(fmt.Sprintf("normalize newer: %s", err))
		job.SetStatus(StatusFailed, "normalizing")
		return
	}
	w.stats.Record(PhaseNormalize, time.Since(phase).Milliseconds())
	log.Info("normalized filings", "older_chars", olderDoc.Len(), "newer_chars", newerDoc.Len())

	if ctx.Err() != nil {
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	// Phase 2: Extract sections. Missing sections are expected data, not
	// faults: they surface as absent map keys plus a progress note.
	job.SetStatus(StatusExtracting, "extracting")
	phase = time.Now()
	olderSections := w.extract(job, log, olderDoc, "older")
	newerSections := w.extract(job, log, newerDoc, "newer")
	w.stats.Record(PhaseExtract, time.Since(phase).Milliseconds())

	if ctx.Err() != nil {
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	// Phase 3: Compare
	job.SetStatus(StatusComparing, "comparing")
	phase = time.Now()
	changes := w.comparator.Compare(olderSections, newerSections)
	w.stats.Record(PhaseCompare, time.Since(phase).Milliseconds())
	job.SetSectionsCompared(len(changes))
	log.Info("compared sections", "sections", len(changes))

	// Phase 4: Validate extraction quality
	job.SetStatus(StatusValidating, "validating")
	phase = time.Now()
	report := w.validator.Validate(newerSections, olderSections)
	w.stats.Record(PhaseValidate, time.Since(phase).Milliseconds())
	if !report.Valid {
		log.Warn("quality issues", "count", len(report.Issues))
	}

	job.SetResult(&Result{
		Ticker:        job.Ticker,
		Older:         older.Meta,
		Newer:         newer.Meta,
		Changes:       changes,
		Quality:       report,
		OlderSections: olderSections,
		NewerSections: newerSections,
		CompletedAt:   time.Now(),
	})
	w.stats.Record(PhaseTotal, time.Since(start).Milliseconds())

	snap := job.Snapshot()
	if snap.Progress.SectionsMissing > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("analysis complete",
		"status", job.Snapshot().Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// flatten turns one uploaded filing into an immutable Document.
func (w *Worker) flatten(input FilingInput) (*filing.Document, error) {
	f, err := normalize.ForFile(input.Filename)
	if err != nil {
		return nil, err
	}
	if p, ok := f.(*normalize.PDFFlattener); ok {
		p.FallbackPdftotext = w.pdfFallback
	}

	text, err := f.Flatten(bytes.NewReader(input.Data), input.Filename)
	if err != nil {
		return nil, err
	}

	id := input.Meta.Accession
	if id == "" {
		id = input.Filename
	}
	return filing.NewDocument(id, normalize.Normalize(text)), nil
}

// extract locates all tracked sections in one document and records misses.
func (w *Worker) extract(job *Job, log *slog.Logger, doc *filing.Document, label string) filing.SectionMap {
	sections, failures := w.locator.Extract(doc)
	for name, err := range failures {
		log.Warn("section not found", "filing", label, "section", name, "reason", err)
		job.AddError(fmt.Sprintf("%s %s: %s", label, name, err))
	}
	job.AddSections(len(sections), len(failures))
	log.Info("extracted sections", "filing", label, "found", len(sections), "missing", len(failures))
	return sections
}
