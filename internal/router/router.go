// Package router drives one visitor through the three screens: it applies
// state transitions, builds prompts and dispatches generation calls.
package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartroute/internal/generation"
	"smartroute/internal/logging"
	"smartroute/internal/models"
	"smartroute/internal/prompt"
	"smartroute/internal/state"
)

// Fixed failure messages shown in the error banner.
const (
	ProspectFailureMessage = "Failed to generate the prospect list. Check your connection and try again."
	RouteFailureMessage    = "Failed to optimize the route. Check your connection and try again."
)

// Messages holds the per-mode failure texts.
type Messages struct {
	ProspectFailure string
	RouteFailure    string
}

// Config configures a Router.
type Config struct {
	// Timeout bounds each generation call. Zero means no timeout.
	Timeout  time.Duration
	Messages Messages
}

// Router is safe for concurrent use by many visitors.
type Router struct {
	machine  *state.Machine
	builder  *prompt.Builder
	gen      generation.Generator
	logger   *zap.Logger
	timeout  time.Duration
	messages Messages

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a router. Outstanding calls are cancelled by Close.
func New(machine *state.Machine, builder *prompt.Builder, gen generation.Generator, logger *zap.Logger, cfg Config) *Router {
	if cfg.Messages.ProspectFailure == "" {
		cfg.Messages.ProspectFailure = ProspectFailureMessage
	}
	if cfg.Messages.RouteFailure == "" {
		cfg.Messages.RouteFailure = RouteFailureMessage
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Router{
		machine:  machine,
		builder:  builder,
		gen:      gen,
		logger:   logging.OrNop(logger),
		timeout:  cfg.Timeout,
		messages: cfg.Messages,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Current returns the visitor's snapshot.
func (r *Router) Current(ctx context.Context, id string) (state.Snapshot, error) {
	return r.machine.Current(ctx, id)
}

// SelectMode opens one of the forms from Home.
func (r *Router) SelectMode(ctx context.Context, id string, v state.View) (state.Snapshot, error) {
	s, _, err := r.machine.Update(ctx, id, func(s state.Snapshot) (state.Snapshot, bool) {
		return state.Select(s, v)
	})
	return s, err
}

// Back returns to Home, clearing result and error.
func (r *Router) Back(ctx context.Context, id string) (state.Snapshot, error) {
	s, _, err := r.machine.Update(ctx, id, func(s state.Snapshot) (state.Snapshot, bool) {
		return state.Back(s), true
	})
	return s, err
}

// SubmitProspect starts a prospecting request. Invalid input, or a submit
// that the current state does not allow, leaves the state untouched.
func (r *Router) SubmitProspect(ctx context.Context, id string, q models.ProspectQuery) (state.Snapshot, bool, error) {
	if err := q.Validate(); err != nil {
		s, lerr := r.machine.Current(ctx, id)
		return s, false, lerr
	}
	s, ok, err := r.machine.Update(ctx, id, func(s state.Snapshot) (state.Snapshot, bool) {
		return state.SubmitProspect(s, q)
	})
	if err != nil || !ok {
		return s, false, err
	}
	r.dispatch(id, s.Seq, r.builder.Prospect(q), r.messages.ProspectFailure)
	return s, true, nil
}

// SubmitRoute starts a route request. Fewer than two distinct non-blank
// stops is inert.
func (r *Router) SubmitRoute(ctx context.Context, id string, raw []string) (state.Snapshot, bool, error) {
	q := models.NewRouteQuery(raw)
	if err := q.Validate(); err != nil {
		s, lerr := r.machine.Current(ctx, id)
		return s, false, lerr
	}
	s, ok, err := r.machine.Update(ctx, id, func(s state.Snapshot) (state.Snapshot, bool) {
		return state.SubmitRoute(s, q)
	})
	if err != nil || !ok {
		return s, false, err
	}
	r.dispatch(id, s.Seq, r.builder.Route(q), r.messages.RouteFailure)
	return s, true, nil
}

// dispatch runs exactly one generation call in the background and applies
// its outcome to the request tagged seq.
func (r *Router) dispatch(id string, seq uint64, req prompt.Request, failure string) {
	dispatchID := uuid.NewString()
	logger := r.logger.With(
		zap.String("dispatch_id", dispatchID),
		zap.String("mode", string(req.Mode)),
		zap.Uint64("seq", seq),
	)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx := r.ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		result, genErr := r.gen.Generate(ctx, req)
		if genErr == nil && result == nil {
			genErr = fmt.Errorf("%w: %w", generation.ErrGenerationFailed, generation.ErrNoResult)
		}

		// The outcome is applied even if the router is closing.
		applyCtx := context.WithoutCancel(ctx)
		_, applied, err := r.machine.Update(applyCtx, id, func(s state.Snapshot) (state.Snapshot, bool) {
			if genErr != nil {
				return state.Fail(s, seq, failure)
			}
			return state.Succeed(s, seq, result)
		})
		switch {
		case err != nil:
			logger.Error("failed to store generation outcome", zap.Error(err))
		case !applied:
			logger.Debug("discarded stale generation outcome")
		case genErr != nil:
			logger.Info("generation request failed", zap.Error(genErr))
		}
	}()
}

// Wait blocks until every dispatched call has been applied.
func (r *Router) Wait() {
	r.wg.Wait()
}

// Close cancels outstanding calls and waits for them to finish.
func (r *Router) Close() {
	r.cancel()
	r.wg.Wait()
}
