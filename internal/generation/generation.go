// Package generation talks to the hosted generative-language model and maps
// its answers into models.GenerationResult.
package generation

import (
	"context"
	"errors"
	"fmt"

	"smartroute/internal/models"
	"smartroute/internal/prompt"
)

var (
	// ErrGenerationFailed is the only failure kind callers observe.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrEmptyPrompt is wrapped in ErrGenerationFailed when a request carries no prompt.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrNoResult is wrapped in ErrGenerationFailed when a generator returns
	// neither a result nor an error.
	ErrNoResult = errors.New("no result")
)

// Generator performs one synchronous generation call.
type Generator interface {
	Generate(ctx context.Context, req prompt.Request) (*models.GenerationResult, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req prompt.Request) (*models.GenerationResult, error)

func (f GeneratorFunc) Generate(ctx context.Context, req prompt.Request) (*models.GenerationResult, error) {
	return f(ctx, req)
}

// failed wraps err so that errors.Is(err, ErrGenerationFailed) holds.
func failed(err error) error {
	if err == nil || errors.Is(err, ErrGenerationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}
