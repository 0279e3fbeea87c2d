package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"smartroute/internal/logging"
	"smartroute/internal/models"
)

var (
	usageDesc = prometheus.NewDesc(
		"smartroute_generation_usage_total",
		"Durable generation request count by mode and outcome",
		[]string{"mode", "outcome"},
		nil,
	)
)

// UsageSource reads the durable usage counters.
type UsageSource interface {
	GetAllUsage(ctx context.Context) ([]models.UsageCount, error)
}

// UsageCollector is a custom Prometheus collector that reads usage counts
// from the database on each scrape.
type UsageCollector struct {
	source UsageSource
	logger *zap.Logger
}

// NewUsageCollector creates a collector backed by source.
func NewUsageCollector(source UsageSource, logger *zap.Logger) *UsageCollector {
	return &UsageCollector{source: source, logger: logging.OrNop(logger)}
}

// Describe sends the metric descriptor to the channel.
func (c *UsageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- usageDesc
}

// Collect queries the database for all usage rows and emits them as counters.
func (c *UsageCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.source.GetAllUsage(ctx)
	if err != nil {
		c.logger.Error("failed to collect usage metrics", zap.Error(err))
		return
	}
	for _, u := range counts {
		ch <- prometheus.MustNewConstMetric(
			usageDesc,
			prometheus.CounterValue,
			float64(u.Count),
			string(u.Mode),
			u.Outcome,
		)
	}
}

// Recorder observes generation calls. It feeds the in-process Prometheus
// metrics and buffers usage counts until the next flush.
type Recorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	mu       sync.Mutex
	pending  map[models.UsageKey]int64
	lastSeen map[models.UsageKey]time.Time
}

// NewRecorder registers the generation metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartroute_generation_requests_total",
				Help: "Total number of generation requests by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartroute_generation_duration_seconds",
				Help:    "Duration of generation requests",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"mode"},
		),
		pending:  make(map[models.UsageKey]int64),
		lastSeen: make(map[models.UsageKey]time.Time),
	}
}

// ObserveGeneration implements generation.Observer.
func (r *Recorder) ObserveGeneration(mode models.Mode, outcome string, elapsed time.Duration) {
	r.requests.WithLabelValues(string(mode), outcome).Inc()
	r.duration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())

	key := models.UsageKey{Mode: mode, Outcome: outcome}
	r.mu.Lock()
	r.pending[key]++
	r.lastSeen[key] = time.Now()
	r.mu.Unlock()
}

// Drain returns and clears the buffered usage counts.
func (r *Recorder) Drain() []models.UsageCount {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil
	}
	counts := make([]models.UsageCount, 0, len(r.pending))
	for key, n := range r.pending {
		counts = append(counts, models.UsageCount{UsageKey: key, Count: n, LastSeenAt: r.lastSeen[key]})
	}
	clear(r.pending)
	clear(r.lastSeen)
	return counts
}

// Restore puts counts back into the buffer after a failed flush.
func (r *Recorder) Restore(counts []models.UsageCount) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range counts {
		r.pending[u.UsageKey] += u.Count
		if u.LastSeenAt.After(r.lastSeen[u.UsageKey]) {
			r.lastSeen[u.UsageKey] = u.LastSeenAt
		}
	}
}
