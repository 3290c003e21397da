package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cifra/api/internal/core/domain"
)

// Transformer is the slice of the cipher service the runner depends on.
type Transformer interface {
	Transform(ctx context.Context, req domain.TransformRequest) (domain.Result, error)
}

// BatchItem is the outcome of one request in a batch. Exactly one of
// Result and Error is meaningful.
type BatchItem struct {
	Index     int            `json:"index"`
	Result    *domain.Result `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
}

// BatchRunner executes independent transforms concurrently.
type BatchRunner struct {
	service     Transformer
	logger      *slog.Logger
	concurrency int
	itemTimeout time.Duration
}

func NewBatchRunner(service Transformer, logger *slog.Logger, concurrency int, itemTimeout time.Duration) *BatchRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchRunner{
		service:     service,
		logger:      logger,
		concurrency: concurrency,
		itemTimeout: itemTimeout,
	}
}

// Run returns one BatchItem per request, in request order. A failing item
// does not affect the others.
func (b *BatchRunner) Run(ctx context.Context, reqs []domain.TransformRequest) []BatchItem {
	items := make([]BatchItem, len(reqs))
	start := time.Now()

	// Concurrency control via semaphore
	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)

		go func(i int, req domain.TransformRequest) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				items[i] = failed(i, err)
				return
			}

			select {
			case sem <- struct{}{}: // Acquire
			case <-ctx.Done():
				items[i] = failed(i, ctx.Err())
				return
			}
			defer func() { <-sem }() // Release

			itemCtx := ctx
			if b.itemTimeout > 0 {
				var cancel context.CancelFunc
				itemCtx, cancel = context.WithTimeout(ctx, b.itemTimeout)
				defer cancel()
			}

			res, err := b.service.Transform(itemCtx, req)
			if err != nil {
				items[i] = failed(i, err)
				return
			}
			items[i] = BatchItem{Index: i, Result: &res}
		}(i, req)
	}
	wg.Wait()

	b.logger.Info("Batch completed",
		slog.Int("items", len(reqs)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return items
}

func failed(i int, err error) BatchItem {
	return BatchItem{Index: i, Error: err.Error(), ErrorCode: domain.ErrorCode(err)}
}
