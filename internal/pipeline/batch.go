package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/facto-ocr/facto/internal/models"
)

// BatchConfig controls parallel batch processing. Documents are
// independent, so the pool shares nothing but the read-only pipeline.
type BatchConfig struct {
	MaxWorkers       int              // 0 = runtime.NumCPU()
	ProgressCallback ProgressCallback // optional progress reporting
	ErrorHandler     func(index int, err error)
}

// DefaultBatchConfig returns sensible defaults for batch processing.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{MaxWorkers: runtime.NumCPU()}
}

type batchJob struct {
	index int
	text  string
}

type batchResult struct {
	index int
	doc   *models.Document
	err   error
}

// ProcessBatch processes multiple documents on a worker pool. Results come
// back in input order; a failed document leaves a nil slot and is reported
// through the config's handlers rather than aborting the batch.
func (p *Pipeline) ProcessBatch(texts []string, cfg BatchConfig) ([]*models.Document, error) {
	return p.ProcessBatchContext(context.Background(), texts, cfg)
}

// ProcessBatchContext is ProcessBatch with cancellation support. On
// cancellation the already-produced results are returned alongside the
// context error.
func (p *Pipeline) ProcessBatchContext(ctx context.Context, texts []string, cfg BatchConfig) ([]*models.Document, error) {
	if len(texts) == 0 {
		return nil, errors.New("pipeline: no documents provided")
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	if cfg.MaxWorkers > len(texts) {
		cfg.MaxWorkers = len(texts)
	}
	callback := cfg.ProgressCallback
	if callback == nil {
		callback = NoOpProgressCallback{}
	}

	callback.OnStart(len(texts))
	defer callback.OnComplete()

	jobs := make(chan batchJob)
	results := make(chan batchResult, len(texts))

	var wg sync.WaitGroup
	for w := 0; w < cfg.MaxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				doc, err := p.Process(job.text)
				select {
				case results <- batchResult{index: job.index, doc: doc, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, text := range texts {
			select {
			case jobs <- batchJob{index: i, text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	docs := make([]*models.Document, len(texts))
	var done int64
	for res := range results {
		if res.err != nil {
			callback.OnError(res.index, res.err)
			if cfg.ErrorHandler != nil {
				cfg.ErrorHandler(res.index, res.err)
			}
		} else {
			docs[res.index] = res.doc
		}
		callback.OnProgress(int(atomic.AddInt64(&done, 1)), len(texts))
	}

	if err := ctx.Err(); err != nil {
		return docs, err
	}
	return docs, nil
}
