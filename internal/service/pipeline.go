package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"intakedoc/internal/assembler"
	"intakedoc/internal/domain"
	"intakedoc/internal/ocr"
	"intakedoc/internal/port"
	"intakedoc/internal/registry"
	"intakedoc/internal/render"
)

// PipelineConfig holds the retry and timeout policy for one file.
type PipelineConfig struct {
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	FileTimeout time.Duration
}

// Pipeline runs a single file instance through OCR, assembly, rendering
// and output. It is safe for concurrent use; all shared state lives in
// the registry.
type Pipeline struct {
	ocr      port.OCRClient
	registry *registry.Registry
	renderer *render.Renderer
	writer   port.OutputWriter
	cfg      PipelineConfig
}

// NewPipeline wires a Pipeline from its collaborators.
func NewPipeline(client port.OCRClient, reg *registry.Registry, renderer *render.Renderer, writer port.OutputWriter, cfg PipelineConfig) *Pipeline {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Pipeline{
		ocr:      client,
		registry: reg,
		renderer: renderer,
		writer:   writer,
		cfg:      cfg,
	}
}

// FileResult reports the outcome of one instance.
type FileResult struct {
	Instance *domain.DocumentInstance
	Stage    domain.FileStage
	Location string
	Cached   bool
	Attempts int
	Err      error
}

// Run processes one instance end to end. The content is materialized at
// most once per checksum across concurrent pipelines; the rendered
// markdown is written to this instance's own output name either way.
func (p *Pipeline) Run(ctx context.Context, inst *domain.DocumentInstance) FileResult {
	res := FileResult{Instance: inst, Stage: domain.StagePending}

	if p.cfg.FileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.FileTimeout)
		defer cancel()
	}

	doc, cached, err := p.registry.Materialize(ctx, inst.Checksum, func(ctx context.Context) (*domain.Document, error) {
		return p.produce(ctx, inst, &res)
	})
	if err != nil {
		// res.Stage keeps the stage the failure happened in.
		res.Err = err
		return res
	}
	res.Cached = cached

	// A cache entry without markdown would mean a corrupted store; refuse
	// to write an empty output file for it.
	if doc.Markdown == "" {
		res.Err = fmt.Errorf("%s: %w", inst.Checksum, domain.ErrNoMarkdown)
		return res
	}

	res.Stage = domain.StageWriting
	location, err := p.writer.Write(ctx, inst.OutputName(), doc.Markdown)
	if err != nil {
		res.Err = err
		return res
	}

	now := time.Now().UTC()
	inst.ProcessedAt = &now
	res.Stage = domain.StageWritten
	res.Location = location
	return res
}

// produce runs the non-cached path: extract, assemble, render.
func (p *Pipeline) produce(ctx context.Context, inst *domain.DocumentInstance, res *FileResult) (*domain.Document, error) {
	res.Stage = domain.StageUploading
	data, err := os.ReadFile(inst.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", inst.Path, err)
	}

	res.Stage = domain.StageAwaitingResult
	elements, err := p.extractWithRetry(ctx, port.ExtractInput{
		Path:     inst.Path,
		FileType: inst.FileType,
		Bytes:    data,
	}, res)
	if err != nil {
		return nil, err
	}

	res.Stage = domain.StageAssembling
	nodes, err := assembler.Assemble(elements)
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", inst.Path, err)
	}

	res.Stage = domain.StageRendering
	markdown, err := p.renderer.Render(nodes)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", inst.Path, err)
	}

	return &domain.Document{
		Checksum:    inst.Checksum,
		Elements:    elements,
		Markdown:    markdown,
		ProcessedAt: time.Now().UTC(),
	}, nil
}

// extractWithRetry resubmits retryable OCR failures with exponential
// backoff, honoring a QuotaError's server-supplied delay when present.
func (p *Pipeline) extractWithRetry(ctx context.Context, in port.ExtractInput, res *FileResult) ([]domain.Element, error) {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		res.Attempts = attempt

		elements, err := p.ocr.Extract(ctx, in)
		if err == nil {
			return elements, nil
		}
		lastErr = err

		if !ocr.Retryable(err) || attempt == p.cfg.MaxAttempts {
			break
		}

		delay := p.backoff(attempt)
		var qe *ocr.QuotaError
		if errors.As(err, &qe) && qe.RetryAfter > delay {
			delay = qe.RetryAfter
		}
		log.Printf("pipeline: %s attempt %d/%d failed (%v), retrying in %s",
			in.Path, attempt, p.cfg.MaxAttempts, err, delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (p *Pipeline) backoff(attempt int) time.Duration {
	delay := p.cfg.BackoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.cfg.BackoffMax {
			return p.cfg.BackoffMax
		}
	}
	if p.cfg.BackoffMax > 0 && delay > p.cfg.BackoffMax {
		delay = p.cfg.BackoffMax
	}
	return delay
}
