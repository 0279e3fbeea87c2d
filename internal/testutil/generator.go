package testutil

import (
	"context"
	"fmt"
	"sync"

	"smartroute/internal/generation"
	"smartroute/internal/models"
	"smartroute/internal/prompt"
)

// Response is one scripted generation outcome.
type Response struct {
	Result *models.GenerationResult
	Err    error
}

// FakeGenerator stands in for the remote model. Responses are returned in
// order; the last one repeats. When Gate is set, each call blocks until a
// value is received from it or the context ends.
type FakeGenerator struct {
	Gate chan struct{}

	mu        sync.Mutex
	responses []Response
	requests  []prompt.Request
}

// NewFakeGenerator scripts the given responses.
func NewFakeGenerator(responses ...Response) *FakeGenerator {
	return &FakeGenerator{responses: responses}
}

// Succeed returns a response carrying the given narrative and citations.
func Succeed(narrative string, citations ...models.Citation) Response {
	return Response{Result: &models.GenerationResult{Narrative: narrative, Citations: citations}}
}

// Reject returns a failing response.
func Reject(reason string) Response {
	return Response{Err: fmt.Errorf("%w: %s", generation.ErrGenerationFailed, reason)}
}

// Generate implements generation.Generator.
func (f *FakeGenerator) Generate(ctx context.Context, req prompt.Request) (*models.GenerationResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, ctx.Err())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil, fmt.Errorf("%w: no scripted response", generation.ErrGenerationFailed)
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp.Result, resp.Err
}

// Requests returns the requests received so far.
func (f *FakeGenerator) Requests() []prompt.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]prompt.Request(nil), f.requests...)
}
