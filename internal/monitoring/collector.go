// Package monitoring tallies per-facility stage outcomes and raises alerts
// when a stage fails too often.
package monitoring

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const meterName = "github.com/galtpos/oasara-sub004/internal/monitoring"

// Outcome labels counted by stages. Stages may add their own.
const (
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// StageSnapshot is a point-in-time view of one stage run.
type StageSnapshot struct {
	Stage     string         `json:"stage"`
	Processed int            `json:"processed"`
	Failed    int            `json:"failed"`
	Outcomes  map[string]int `json:"outcomes"`
	StartedAt time.Time      `json:"started_at"`
	Elapsed   time.Duration  `json:"elapsed"`
}

// FailureRate is failed over processed, or 0 before anything finished.
func (s StageSnapshot) FailureRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Failed) / float64(s.Processed)
}

// Collector counts facility outcomes for one stage and mirrors them to the
// pipeline.facilities counter.
type Collector struct {
	stage   string
	started time.Time
	counter metric.Int64Counter

	mu        sync.Mutex
	processed int
	outcomes  map[string]int
}

// NewCollector creates a collector on the global meter provider.
func NewCollector(stage string) *Collector {
	return NewCollectorWithProvider(stage, otel.GetMeterProvider())
}

// NewCollectorWithProvider creates a collector recording on mp.
func NewCollectorWithProvider(stage string, mp metric.MeterProvider) *Collector {
	counter, err := mp.Meter(meterName).Int64Counter(
		"pipeline.facilities",
		metric.WithDescription("Facilities processed by a pipeline stage, by outcome"),
	)
	if err != nil {
		zap.L().Warn("monitoring: create facilities counter", zap.Error(err))
	}
	return &Collector{
		stage:    stage,
		started:  time.Now().UTC(),
		counter:  counter,
		outcomes: make(map[string]int),
	}
}

// Record counts one processed facility under outcome.
func (c *Collector) Record(ctx context.Context, outcome string) {
	c.mu.Lock()
	c.processed++
	c.outcomes[outcome]++
	c.mu.Unlock()

	if c.counter != nil {
		c.counter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", c.stage),
			attribute.String("outcome", outcome),
		))
	}
}

// Snapshot returns the counts so far.
func (c *Collector) Snapshot() StageSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcomes := make(map[string]int, len(c.outcomes))
	for k, v := range c.outcomes {
		outcomes[k] = v
	}
	return StageSnapshot{
		Stage:     c.stage,
		Processed: c.processed,
		Failed:    c.outcomes[OutcomeFailed],
		Outcomes:  outcomes,
		StartedAt: c.started,
		Elapsed:   time.Since(c.started),
	}
}

// Fields flattens outcome counts for a notification.
func (s StageSnapshot) Fields() map[string]any {
	out := make(map[string]any, len(s.Outcomes)+2)
	out["processed"] = s.Processed
	for k, v := range s.Outcomes {
		out[k] = v
	}
	out["elapsed"] = s.Elapsed.Round(time.Second).String()
	return out
}
