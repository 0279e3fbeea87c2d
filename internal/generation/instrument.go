package generation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"smartroute/internal/logging"
	"smartroute/internal/models"
	"smartroute/internal/prompt"
)

// Outcomes reported to an Observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Observer receives one notification per completed generation call.
type Observer interface {
	ObserveGeneration(mode models.Mode, outcome string, elapsed time.Duration)
}

type instrumented struct {
	next   Generator
	obs    Observer
	logger *zap.Logger
}

// Instrument wraps next with metrics, tracing and logging. It never changes
// the result or the error.
func Instrument(next Generator, obs Observer, logger *zap.Logger) Generator {
	return &instrumented{next: next, obs: obs, logger: logging.OrNop(logger)}
}

func (i *instrumented) Generate(ctx context.Context, req prompt.Request) (*models.GenerationResult, error) {
	ctx, span := otel.Tracer("smartroute/generation").Start(ctx, "generation.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("generation.mode", string(req.Mode)),
		attribute.Int("generation.prompt_bytes", len(req.Prompt)),
		attribute.Bool("generation.location_tool", req.UseLocationTool),
	)

	start := time.Now()
	result, err := i.next.Generate(ctx, req)
	elapsed := time.Since(start)

	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = OutcomeFailure
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		i.logger.Warn("generation failed",
			zap.String("mode", string(req.Mode)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	case result == nil:
		outcome = OutcomeFailure
		span.SetStatus(codes.Error, "no result")
		i.logger.Warn("generation returned no result",
			zap.String("mode", string(req.Mode)),
			zap.Duration("elapsed", elapsed),
		)
	default:
		span.SetAttributes(attribute.Int("generation.citations", len(result.Citations)))
		i.logger.Info("generation completed",
			zap.String("mode", string(req.Mode)),
			zap.Duration("elapsed", elapsed),
			zap.Int("narrative_bytes", len(result.Narrative)),
			zap.Int("citations", len(result.Citations)),
		)
	}

	if i.obs != nil {
		i.obs.ObserveGeneration(req.Mode, outcome, elapsed)
	}
	return result, err
}
