package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"smartroute/internal/jobs"
	"smartroute/internal/metrics"
	"smartroute/internal/models"
)

type stepLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *stepLog) add(step string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

type fakeServer struct {
	log *stepLog
	err error
}

func (s *fakeServer) Shutdown() error {
	s.log.add("server")
	return s.err
}

// fakeRouter finishes one generation call while closing.
type fakeRouter struct {
	log *stepLog
	rec *metrics.Recorder
}

func (r *fakeRouter) Close() {
	r.rec.ObserveGeneration(models.ModeRoute, "success", time.Second)
	r.log.add("router")
}

type countingSink struct {
	mu    sync.Mutex
	log   *stepLog
	total int64
}

func (s *countingSink) AddUsage(_ context.Context, counts []models.UsageCount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range counts {
		s.total += c.Count
	}
	s.log.add("flush")
	return nil
}

func TestShutdown_FlushesUsageAfterRouterCloses(t *testing.T) {
	log := &stepLog{}
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	sink := &countingSink{log: log}
	flusher := jobs.NewUsageFlusher(rec, sink, time.Hour, zaptest.NewLogger(t))

	err := shutdown(&fakeServer{log: log}, &fakeRouter{log: log, rec: rec}, flusher, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"server", "router", "flush"}, log.steps)
	assert.Equal(t, int64(1), sink.total)
	assert.Nil(t, rec.Drain())
}

func TestShutdown_WithoutDatabase(t *testing.T) {
	log := &stepLog{}
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	boom := errors.New("listener closed")

	err := shutdown(&fakeServer{log: log, err: boom}, &fakeRouter{log: log, rec: rec}, nil, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"server", "router"}, log.steps)
}
