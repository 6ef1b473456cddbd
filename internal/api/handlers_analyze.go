package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgallion1/secdiff/internal/filing"
	"github.com/dgallion1/secdiff/internal/normalize"
	"github.com/dgallion1/secdiff/internal/pipeline"
)

// handleAnalyze accepts a filing pair (multipart fields "older" and "newer",
// plus identity metadata) and queues a comparison job.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	// Two documents per request; leave headroom for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*2+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	ticker := strings.ToUpper(strings.TrimSpace(r.FormValue("ticker")))
	if ticker == "" {
		jsonError(w, "ticker is required", http.StatusBadRequest)
		return
	}

	older, err := s.readFiling(r, "older", ticker)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	newer, err := s.readFiling(r, "newer", ticker)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        uuid.NewString(),
		Ticker:    ticker,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFilings(older, newer)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"ticker":   job.Ticker,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/analyses/%s/status", job.ID),
	})
}

// readFiling extracts one uploaded filing and its metadata from the form.
// Field names are prefixed: "older"/"newer" for the file, "older_accession",
// "older_filing_date" (2006-01-02), "older_company", and so on.
func (s *Server) readFiling(r *http.Request, prefix, ticker string) (pipeline.FilingInput, error) {
	file, header, err := r.FormFile(prefix)
	if err != nil {
		return pipeline.FilingInput{}, fmt.Errorf("%s filing is required: %w", prefix, err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !normalize.IsSupportedExtension(filename) {
		return pipeline.FilingInput{}, fmt.Errorf("%s: unsupported file type: %s", prefix, filepath.Ext(filename))
	}

	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if err != nil {
		return pipeline.FilingInput{}, fmt.Errorf("%s: %w", prefix, err)
	}

	meta := filing.Metadata{
		Ticker:      ticker,
		CompanyName: r.FormValue(prefix + "_company"),
		Accession:   r.FormValue(prefix + "_accession"),
	}
	if v := r.FormValue(prefix + "_filing_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return pipeline.FilingInput{}, fmt.Errorf("%s_filing_date: expected YYYY-MM-DD", prefix)
		}
		meta.FilingDate = d
	}

	return pipeline.FilingInput{Meta: meta, Filename: filename, Data: data}, nil
}

func readLimited(file multipart.File, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", max)
	}
	return data, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// handleReport returns the structured change records, or a plain-text
// rendering with ?format=text.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	result := job.Result()
	if result == nil {
		jsonError(w, fmt.Sprintf("analysis not finished (status %s)", job.Snapshot().Status), http.StatusConflict)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, name := range filing.Sections() {
			if rec, ok := result.Changes[name]; ok {
				fmt.Fprintln(w, rec.Render(name))
			}
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleSections exposes the raw extracted section text of one filing for
// the quality-validation consumer.
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	result := job.Result()
	if result == nil {
		jsonError(w, fmt.Sprintf("analysis not finished (status %s)", job.Snapshot().Status), http.StatusConflict)
		return
	}

	which := r.URL.Query().Get("filing")
	if which == "" {
		which = "newer"
	}
	var sections filing.SectionMap
	switch which {
	case "newer":
		sections = result.NewerSections
	case "older":
		sections = result.OlderSections
	default:
		jsonError(w, `filing must be "older" or "newer"`, http.StatusBadRequest)
		return
	}

	out := make(map[string]any, len(sections))
	for name, text := range sections {
		out[string(name)] = map[string]any{
			"text":       text,
			"word_count": sections.WordCount(name),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ticker":   result.Ticker,
		"filing":   which,
		"sections": out,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"analyses":    s.orchestrator.Stats().Snapshot(),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
