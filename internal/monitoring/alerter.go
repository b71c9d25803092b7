package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/notify"
)

// AlertType identifies the kind of alert.
type AlertType string

const AlertStageFailureRate AlertType = "stage_failure_rate"

const (
	// DefaultFailureRate alerts when half of the facilities fail.
	DefaultFailureRate = 0.5
	// minProcessed keeps tiny runs from alerting.
	minProcessed = 5
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Notification renders the alert for the notifier.
func (a Alert) Notification() notify.Message {
	return notify.Message{
		Subject: fmt.Sprintf("[%s] %s", a.Severity, a.Type),
		Text:    a.Message,
		Fields:  a.Details,
	}
}

// Alerter evaluates stage snapshots against the failure threshold and
// hands alerts to the notifier.
type Alerter struct {
	threshold float64
	notifier  *notify.Notifier
}

// NewAlerter creates an Alerter. A threshold outside (0, 1] uses the default.
func NewAlerter(threshold float64, n *notify.Notifier) *Alerter {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFailureRate
	}
	return &Alerter{threshold: threshold, notifier: n}
}

// Evaluate checks the snapshot and returns any alerts.
func (a *Alerter) Evaluate(snap StageSnapshot) []Alert {
	if snap.Processed < minProcessed || snap.FailureRate() < a.threshold {
		return nil
	}
	return []Alert{{
		Type:     AlertStageFailureRate,
		Severity: "high",
		Message: fmt.Sprintf(
			"%s failure rate %.1f%% reached threshold %.1f%% (%d failed / %d processed)",
			snap.Stage, snap.FailureRate()*100, a.threshold*100, snap.Failed, snap.Processed,
		),
		Details: map[string]any{
			"stage":        snap.Stage,
			"failure_rate": snap.FailureRate(),
			"threshold":    a.threshold,
			"failed":       snap.Failed,
			"processed":    snap.Processed,
		},
		Timestamp: time.Now().UTC(),
	}}
}

// SendAlerts queues alerts on the notifier and returns how many were queued.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.notifier == nil || len(a.notifier.Channels()) == 0 {
		return 0
	}
	for _, alert := range alerts {
		zap.L().Warn("monitoring: alert raised",
			zap.String("type", string(alert.Type)),
			zap.String("message", alert.Message),
		)
		a.notifier.Notify(ctx, alert.Notification())
	}
	return len(alerts)
}

// Report sends the stage summary and any failure alert.
func (a *Alerter) Report(ctx context.Context, snap StageSnapshot) []Alert {
	if a.notifier != nil {
		a.notifier.Notify(ctx, notify.Message{
			Subject: snap.Stage + " complete",
			Fields:  snap.Fields(),
		})
	}
	alerts := a.Evaluate(snap)
	a.SendAlerts(ctx, alerts)
	return alerts
}
