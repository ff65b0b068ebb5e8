package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// QueryCallsParallel issues one gateway call per entry concurrently and waits
// for the whole batch. The result slice is aligned with the input: index i
// holds the outcome of calls[i], so duplicate models produce duplicate
// independent outcomes and label assignment follows request order. A failed
// call still appears in the output with its error populated; no result is
// dropped and no retry is performed.
func (c *OpenRouterClient) QueryCallsParallel(ctx context.Context, calls []ModelCall) []*ModelResponse {
	results := make([]*ModelResponse, len(calls))

	g, ctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call // Capture loop variables
		g.Go(func() error {
			// QueryModel never returns a Go error; failures are data
			results[i] = c.QueryModel(ctx, call.Model, call.Messages, ModelQueryTimeout)
			return nil
		})
	}

	// No goroutine returns an error, so Wait only synchronizes the batch
	g.Wait()

	return results
}

// QueryModelsParallel fans a single shared message payload out to a set of
// models. Convenience wrapper over QueryCallsParallel.
func (c *OpenRouterClient) QueryModelsParallel(ctx context.Context, models []string, messages []ChatMessage) []*ModelResponse {
	calls := make([]ModelCall, len(models))
	for i, model := range models {
		calls[i] = ModelCall{Model: model, Messages: messages}
	}
	return c.QueryCallsParallel(ctx, calls)
}
