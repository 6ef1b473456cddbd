package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/secdiff/internal/compare"
	"github.com/dgallion1/secdiff/internal/config"
	"github.com/dgallion1/secdiff/internal/diff"
	"github.com/dgallion1/secdiff/internal/quality"
	"github.com/dgallion1/secdiff/internal/section"
)

// Orchestrator manages the filing-analysis pipeline. Filing pairs are
// independent, so jobs parallelize freely across workers with no shared
// mutable state.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	stats *AnalysisStats
	log   *slog.Logger
	cfg   config.Config

	locator    *section.Locator
	comparator *compare.Comparator
	validator  *quality.Validator

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator wires the analysis components from config.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	engine := diff.NewEngine(diff.Config{
		SizeCeiling: cfg.DiffSizeCeiling,
		ChunkSize:   cfg.DiffChunkSize,
		MaxOutput:   cfg.DiffMaxOutput,
	})
	return &Orchestrator{
		jobs:       NewJobStore(cfg.JobTTL),
		queue:      make(chan *Job, cfg.MaxQueueSize),
		stats:      NewAnalysisStats(time.Hour),
		log:        log,
		cfg:        cfg,
		locator:    section.NewLocator(),
		comparator: compare.NewComparator(engine, cfg.MinChangeLength),
		validator:  quality.NewValidator(nil),
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.locator, o.comparator, o.validator, o.stats, o.log, o.cfg.PDFFallbackPdftotext)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the rolling analysis duration stats.
func (o *Orchestrator) Stats() *AnalysisStats {
	return o.stats
}
