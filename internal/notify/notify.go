// Package notify posts stage summaries and alerts to chat, email and
// webhook channels without blocking the caller.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/galtpos/oasara-sub004/internal/config"
)

const (
	meterName      = "github.com/galtpos/oasara-sub004/internal/notify"
	defaultTimeout = 10 * time.Second
)

// Message is a notification. Fields are rendered as "key: value" lines.
type Message struct {
	Subject string         `json:"subject"`
	Text    string         `json:"text"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Plain renders the message as plain text with fields sorted by key.
func (m Message) Plain() string {
	var b strings.Builder
	b.WriteString(m.Subject)
	if m.Text != "" {
		b.WriteString("\n")
		b.WriteString(m.Text)
	}
	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %v", k, m.Fields[k])
	}
	return b.String()
}

// Notifier fans messages out to every sender on background goroutines.
type Notifier struct {
	senders  []Sender
	timeout  time.Duration
	failures metric.Int64Counter
	wg       sync.WaitGroup
}

// Option configures a Notifier.
type Option func(*notifierOptions)

type notifierOptions struct {
	provider metric.MeterProvider
	timeout  time.Duration
}

// WithMeterProvider records the failure counter on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *notifierOptions) { o.provider = mp }
}

// WithTimeout bounds each send.
func WithTimeout(d time.Duration) Option {
	return func(o *notifierOptions) { o.timeout = d }
}

// New creates a Notifier. With no senders every Notify is a no-op.
func New(senders []Sender, opts ...Option) *Notifier {
	o := notifierOptions{provider: otel.GetMeterProvider(), timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	failures, err := o.provider.Meter(meterName).Int64Counter(
		"notify.failures",
		metric.WithDescription("Notifications that could not be delivered"),
	)
	if err != nil {
		zap.L().Warn("notify: create failure counter", zap.Error(err))
	}
	return &Notifier{senders: senders, timeout: o.timeout, failures: failures}
}

// FromConfig builds the senders for every configured channel.
func FromConfig(cfg config.NotifyConfig, opts ...Option) *Notifier {
	hc := &http.Client{Timeout: defaultTimeout}
	var senders []Sender
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		senders = append(senders, &Telegram{BaseURL: cfg.TelegramURL, Token: cfg.TelegramToken, ChatID: cfg.TelegramChatID, Client: hc})
	}
	if cfg.ResendKey != "" && cfg.EmailFrom != "" && cfg.EmailTo != "" {
		senders = append(senders, &Resend{BaseURL: cfg.ResendURL, Key: cfg.ResendKey, From: cfg.EmailFrom, To: cfg.EmailTo, Client: hc})
	}
	if cfg.WebhookURL != "" {
		senders = append(senders, &Webhook{URL: cfg.WebhookURL, Client: hc})
	}
	return New(senders, opts...)
}

// Channels lists the configured sender names.
func (n *Notifier) Channels() []string {
	out := make([]string, len(n.senders))
	for i, s := range n.senders {
		out[i] = s.Name()
	}
	return out
}

// Notify sends msg to all channels in the background and returns at once.
// Failures are logged and counted, never returned.
func (n *Notifier) Notify(ctx context.Context, msg Message) {
	if n == nil || len(n.senders) == 0 {
		return
	}
	// Delivery outlives a cancelled command so the final summary still goes out.
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		var g errgroup.Group
		for _, s := range n.senders {
			g.Go(func() error {
				if err := s.Send(ctx, msg); err != nil {
					n.recordFailure(ctx, s.Name(), err)
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// Wait blocks until in-flight notifications finish.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) recordFailure(ctx context.Context, channel string, err error) {
	zap.L().Error("notify: send failed",
		zap.String("channel", channel),
		zap.Error(err),
	)
	if n.failures != nil {
		n.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel)))
	}
}
