package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"smartroute/internal/logging"
	"smartroute/internal/models"
)

// UsageBuffer hands out pending usage counts.
type UsageBuffer interface {
	Drain() []models.UsageCount
	Restore(counts []models.UsageCount)
}

// UsageSink persists usage counts.
type UsageSink interface {
	AddUsage(ctx context.Context, counts []models.UsageCount) error
}

// UsageFlusher periodically moves buffered usage counts to the database.
type UsageFlusher struct {
	buffer   UsageBuffer
	sink     UsageSink
	interval time.Duration
	logger   *zap.Logger
}

// NewUsageFlusher creates a new usage flusher.
func NewUsageFlusher(buffer UsageBuffer, sink UsageSink, interval time.Duration, logger *zap.Logger) *UsageFlusher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &UsageFlusher{
		buffer:   buffer,
		sink:     sink,
		interval: interval,
		logger:   logging.OrNop(logger),
	}
}

// Start runs the flush loop until ctx is done, then flushes once more.
func (f *UsageFlusher) Start(ctx context.Context) {
	f.logger.Info("usage flusher started", zap.Duration("interval", f.interval))

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			f.Flush(flushCtx)
			cancel()
			f.logger.Info("usage flusher stopped")
			return
		case <-ticker.C:
			f.Flush(ctx)
		}
	}
}

// Flush writes the pending counts. On failure they go back into the buffer.
func (f *UsageFlusher) Flush(ctx context.Context) {
	counts := f.buffer.Drain()
	if len(counts) == 0 {
		return
	}
	if err := f.sink.AddUsage(ctx, counts); err != nil {
		f.buffer.Restore(counts)
		f.logger.Warn("failed to flush usage counts", zap.Int("rows", len(counts)), zap.Error(err))
		return
	}
	f.logger.Debug("flushed usage counts", zap.Int("rows", len(counts)))
}
