/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crptapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/acronis/go-crptapi/document"
	"github.com/acronis/go-crptapi/log"
	"github.com/acronis/go-crptapi/retry"
)

// DocumentCreator submits a single document. *Client implements it.
type DocumentCreator interface {
	CreateDocument(ctx context.Context, doc *document.Document, signature string) Outcome
}

// BatchSubmitterOpts represents options for the BatchSubmitter.
type BatchSubmitterOpts struct {
	// Concurrency is the maximum number of documents submitted at the same time.
	// DefaultBatchConcurrency is used if it is not positive.
	Concurrency int

	// RetryPolicy is used for resubmitting rate limited documents.
	// Rate limited documents are not resubmitted if it is nil.
	RetryPolicy retry.Policy

	// Logger is used for logging resubmissions. Disabled logger is used by default.
	Logger log.FieldLogger
}

// BatchSubmitter submits many documents concurrently.
// Only rate limited submissions are resubmitted, other outcomes are final.
type BatchSubmitter struct {
	creator     DocumentCreator
	concurrency int
	retryPolicy retry.Policy
	logger      log.FieldLogger
}

// NewBatchSubmitter creates a new BatchSubmitter.
func NewBatchSubmitter(creator DocumentCreator, opts BatchSubmitterOpts) *BatchSubmitter {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultBatchConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.NewDisabledLogger()
	}
	return &BatchSubmitter{
		creator:     creator,
		concurrency: opts.Concurrency,
		retryPolicy: opts.RetryPolicy,
		logger:      opts.Logger,
	}
}

// NewBatchSubmitterFromConfig creates a new BatchSubmitter configured by cfg.
func NewBatchSubmitterFromConfig(creator DocumentCreator, cfg BatchConfig, logger log.FieldLogger) *BatchSubmitter {
	var policy retry.Policy
	if cfg.Retries != nil {
		policy = cfg.Retries.GetPolicy()
	}
	return NewBatchSubmitter(creator, BatchSubmitterOpts{
		Concurrency: cfg.Concurrency,
		RetryPolicy: policy,
		Logger:      logger,
	})
}

// SubmitAll submits all documents and returns their outcomes in the same order.
// If ctx is canceled, documents that are still rate limited keep the OutcomeRateLimited outcome.
func (bs *BatchSubmitter) SubmitAll(ctx context.Context, docs []*document.Document, signature string) []Outcome {
	outcomes := make([]Outcome, len(docs))
	sem := make(chan struct{}, bs.concurrency)
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			outcomes[i] = bs.submit(ctx, i, docs[i], signature)
		}(i)
	}
	wg.Wait()
	return outcomes
}

func (bs *BatchSubmitter) submit(ctx context.Context, idx int, doc *document.Document, signature string) Outcome {
	if bs.retryPolicy == nil {
		return bs.creator.CreateDocument(ctx, doc, signature)
	}

	var outcome Outcome
	notify := func(err error, delay time.Duration) {
		bs.logger.Debug("resubmitting rate limited document",
			log.Int("index", idx), log.Duration("delay", delay))
	}
	isRetryable := func(err error) bool {
		return errors.Is(err, ErrRateLimited)
	}
	_ = retry.DoWithRetry(ctx, bs.retryPolicy, isRetryable, notify, func(ctx context.Context) error {
		outcome = bs.creator.CreateDocument(ctx, doc, signature)
		if outcome.Kind == OutcomeRateLimited {
			return ErrRateLimited
		}
		return nil
	})
	return outcome
}
