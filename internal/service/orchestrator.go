package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"intakedoc/internal/domain"
	"intakedoc/internal/ocr"
)

// Failure describes one file that did not produce output.
type Failure struct {
	Path   string
	Stage  domain.FileStage
	Reason string
}

// Report summarizes one batch run. Written counts instances whose content
// was freshly processed; Skipped counts instances satisfied from cache.
type Report struct {
	RunID    uuid.UUID
	Started  time.Time
	Finished time.Time
	Written  int
	Skipped  int
	Failed   int
	Failures []Failure
	Fatal    error
	Results  []FileResult
}

// OK reports whether every instance produced output and the batch was not
// aborted.
func (r *Report) OK() bool {
	return r.Fatal == nil && r.Failed == 0
}

// Orchestrator fans a batch of instances across a bounded pool of
// pipelines.
type Orchestrator struct {
	pipeline    *Pipeline
	concurrency int
}

// NewOrchestrator creates an Orchestrator running at most concurrency
// pipelines at a time.
func NewOrchestrator(pipeline *Pipeline, concurrency int) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{pipeline: pipeline, concurrency: concurrency}
}

// Run processes every instance and returns the batch report. An
// authentication failure on any file cancels the rest of the batch;
// every other failure is recorded and the batch continues.
func (o *Orchestrator) Run(ctx context.Context, instances []*domain.DocumentInstance) *Report {
	report := &Report{
		RunID:   uuid.New(),
		Started: time.Now().UTC(),
	}
	log.Printf("orchestrator: run %s starting, %d files, concurrency %d",
		report.RunID, len(instances), o.concurrency)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	reject := func(inst *domain.DocumentInstance, err error) {
		mu.Lock()
		defer mu.Unlock()
		report.Failed++
		report.Failures = append(report.Failures, Failure{
			Path:   inst.Path,
			Stage:  domain.StagePending,
			Reason: err.Error(),
		})
		report.Results = append(report.Results, FileResult{
			Instance: inst,
			Stage:    domain.StagePending,
			Err:      err,
		})
	}

	for _, inst := range instances {
		select {
		case sem <- struct{}{}:
		case <-runCtx.Done():
			reject(inst, runCtx.Err())
			continue
		}

		// The semaphore can win the select even after cancellation; never
		// dispatch new work once the run context is gone.
		if err := runCtx.Err(); err != nil {
			<-sem
			reject(inst, err)
			continue
		}

		wg.Add(1)
		go func(inst *domain.DocumentInstance) {
			defer wg.Done()
			defer func() { <-sem }()

			res := o.pipeline.Run(runCtx, inst)

			mu.Lock()
			defer mu.Unlock()
			report.Results = append(report.Results, res)

			if res.Err != nil {
				report.Failed++
				report.Failures = append(report.Failures, Failure{
					Path:   inst.Path,
					Stage:  res.Stage,
					Reason: res.Err.Error(),
				})
				if ocr.IsFatal(res.Err) && report.Fatal == nil {
					report.Fatal = res.Err
					log.Printf("orchestrator: fatal error on %s, aborting batch: %v", inst.Path, res.Err)
					cancel()
				} else {
					log.Printf("orchestrator: %s failed at %s: %v", inst.Path, res.Stage, res.Err)
				}
				return
			}

			if res.Cached {
				report.Skipped++
			} else {
				report.Written++
			}
			log.Printf("orchestrator: %s -> %s (cached=%t, attempts=%d)",
				inst.Path, res.Location, res.Cached, res.Attempts)
		}(inst)
	}

	wg.Wait()
	report.Finished = time.Now().UTC()
	log.Printf("orchestrator: run %s finished in %s: %d written, %d skipped, %d failed",
		report.RunID, report.Finished.Sub(report.Started).Round(time.Millisecond),
		report.Written, report.Skipped, report.Failed)
	return report
}
