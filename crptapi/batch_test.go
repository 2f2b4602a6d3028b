/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crptapi

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/acronis/go-crptapi/document"
	"github.com/acronis/go-crptapi/retry"
)

type fakeDocumentCreator struct {
	mu sync.Mutex
	// rateLimitedTimes is the number of times each document is rate limited before being sent.
	rateLimitedTimes map[string]int
	finalOutcomes    map[string]Outcome
	calls            map[string]int

	inFlight    *atomic.Int32
	maxInFlight *atomic.Int32
}

func newFakeDocumentCreator() *fakeDocumentCreator {
	return &fakeDocumentCreator{
		rateLimitedTimes: make(map[string]int),
		finalOutcomes:    make(map[string]Outcome),
		calls:            make(map[string]int),
		inFlight:         atomic.NewInt32(0),
		maxInFlight:      atomic.NewInt32(0),
	}
}

func (c *fakeDocumentCreator) CreateDocument(_ context.Context, doc *document.Document, _ string) Outcome {
	n := c.inFlight.Inc()
	defer c.inFlight.Dec()
	for {
		cur := c.maxInFlight.Load()
		if n <= cur || c.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[doc.DocID]++
	if c.calls[doc.DocID] <= c.rateLimitedTimes[doc.DocID] {
		return Outcome{Kind: OutcomeRateLimited}
	}
	if outcome, ok := c.finalOutcomes[doc.DocID]; ok {
		return outcome
	}
	return Outcome{Kind: OutcomeSent, StatusCode: http.StatusOK, RequestID: doc.DocID}
}

func (c *fakeDocumentCreator) Calls(docID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[docID]
}

func makeDocs(ids ...string) []*document.Document {
	docs := make([]*document.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, &document.Document{DocID: id})
	}
	return docs
}

func TestBatchSubmitter_SubmitAll(t *testing.T) {
	t.Run("outcomes are returned in input order", func(t *testing.T) {
		creator := newFakeDocumentCreator()
		bs := NewBatchSubmitter(creator, BatchSubmitterOpts{Concurrency: 3})

		ids := []string{"a", "b", "c", "d", "e", "f", "g"}
		outcomes := bs.SubmitAll(context.Background(), makeDocs(ids...), "sig")
		require.Len(t, outcomes, len(ids))
		for i, id := range ids {
			require.Equal(t, id, outcomes[i].RequestID)
			require.True(t, outcomes[i].IsSuccessful())
		}
		require.LessOrEqual(t, creator.maxInFlight.Load(), int32(3))
	})

	t.Run("rate limited documents are resubmitted", func(t *testing.T) {
		creator := newFakeDocumentCreator()
		creator.rateLimitedTimes["a"] = 2
		creator.rateLimitedTimes["b"] = 1
		bs := NewBatchSubmitter(creator, BatchSubmitterOpts{
			Concurrency: 2,
			RetryPolicy: retry.NewConstantBackoffPolicy(time.Millisecond, 5),
		})

		outcomes := bs.SubmitAll(context.Background(), makeDocs("a", "b", "c"), "sig")
		for _, outcome := range outcomes {
			require.True(t, outcome.IsSuccessful())
		}
		require.Equal(t, 3, creator.Calls("a"))
		require.Equal(t, 2, creator.Calls("b"))
		require.Equal(t, 1, creator.Calls("c"))
	})

	t.Run("retries are exhausted", func(t *testing.T) {
		creator := newFakeDocumentCreator()
		creator.rateLimitedTimes["a"] = 100
		bs := NewBatchSubmitter(creator, BatchSubmitterOpts{
			RetryPolicy: retry.NewConstantBackoffPolicy(time.Millisecond, 2),
		})

		outcomes := bs.SubmitAll(context.Background(), makeDocs("a"), "sig")
		require.Equal(t, OutcomeRateLimited, outcomes[0].Kind)
		require.Equal(t, 3, creator.Calls("a"))
	})

	t.Run("other failures are not resubmitted", func(t *testing.T) {
		creator := newFakeDocumentCreator()
		creator.finalOutcomes["a"] = Outcome{Kind: OutcomeTransportFailed, Err: &TransportError{context.DeadlineExceeded}}
		creator.finalOutcomes["b"] = Outcome{Kind: OutcomeSent, StatusCode: http.StatusUnprocessableEntity}
		bs := NewBatchSubmitter(creator, BatchSubmitterOpts{
			RetryPolicy: retry.NewConstantBackoffPolicy(time.Millisecond, 5),
		})

		outcomes := bs.SubmitAll(context.Background(), makeDocs("a", "b"), "sig")
		require.Equal(t, OutcomeTransportFailed, outcomes[0].Kind)
		require.Equal(t, http.StatusUnprocessableEntity, outcomes[1].StatusCode)
		require.Equal(t, 1, creator.Calls("a"))
		require.Equal(t, 1, creator.Calls("b"))
	})

	t.Run("without retry policy", func(t *testing.T) {
		creator := newFakeDocumentCreator()
		creator.rateLimitedTimes["a"] = 1
		bs := NewBatchSubmitter(creator, BatchSubmitterOpts{})

		outcomes := bs.SubmitAll(context.Background(), makeDocs("a"), "sig")
		require.Equal(t, OutcomeRateLimited, outcomes[0].Kind)
		require.Equal(t, 1, creator.Calls("a"))
	})

	t.Run("context is canceled", func(t *testing.T) {
		creator := newFakeDocumentCreator()
		creator.rateLimitedTimes["a"] = 100
		bs := NewBatchSubmitter(creator, BatchSubmitterOpts{
			RetryPolicy: retry.NewConstantBackoffPolicy(time.Hour, 0),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		outcomes := bs.SubmitAll(ctx, makeDocs("a"), "sig")
		require.Equal(t, OutcomeRateLimited, outcomes[0].Kind)
		require.Equal(t, 1, creator.Calls("a"))
	})
}

func TestBatchSubmitter_WithClient(t *testing.T) {
	api := newFakeRegistrationAPI(t, http.StatusOK)
	cfg := newTestConfig(api.Endpoint(), 3)
	cfg.RateLimit.Interval = 100
	cfg.RateLimit.TimeUnit = TimeUnitMillisecond
	cfg.Batch.Concurrency = 4
	cfg.Batch.Retries = &retry.Config{
		Enabled:     true,
		MaxAttempts: 50,
		Policy:      retry.PolicyConfig{Strategy: retry.StrategyConstant, ConstantBackoffInterval: 20 * time.Millisecond},
	}
	client := newTestClient(t, cfg, Opts{})

	bs := NewBatchSubmitterFromConfig(client, cfg.Batch, nil)
	outcomes := bs.SubmitAll(context.Background(), makeDocs("1", "2", "3", "4", "5", "6", "7"), "sig")
	for i, outcome := range outcomes {
		require.True(t, outcome.IsSuccessful(), "document #%d: %v", i, outcome.AsError())
	}
	require.EqualValues(t, 7, api.callCount.Load())
}
