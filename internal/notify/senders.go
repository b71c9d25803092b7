package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
)

// Sender delivers a message to one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// postJSON sends body to url and treats any status >= 400 as an error.
func postJSON(ctx context.Context, hc *http.Client, url string, body any, headers map[string]string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "notify: marshal payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "notify: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return eris.Wrap(err, "notify: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("notify: status %d", resp.StatusCode)
	}
	return nil
}

// Telegram posts to a chat through the Bot API sendMessage method.
type Telegram struct {
	BaseURL string
	Token   string
	ChatID  string
	Client  *http.Client
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, msg Message) error {
	url := strings.TrimRight(t.BaseURL, "/") + "/bot" + t.Token + "/sendMessage"
	err := postJSON(ctx, t.Client, url, map[string]string{
		"chat_id": t.ChatID,
		"text":    msg.Plain(),
	}, nil)
	return eris.Wrap(err, "telegram: send message")
}

// Resend sends an email through the Resend API.
type Resend struct {
	BaseURL string
	Key     string
	From    string
	To      string
	Client  *http.Client
}

func (r *Resend) Name() string { return "resend" }

func (r *Resend) Send(ctx context.Context, msg Message) error {
	url := strings.TrimRight(r.BaseURL, "/") + "/emails"
	err := postJSON(ctx, r.Client, url, map[string]any{
		"from":    r.From,
		"to":      []string{r.To},
		"subject": msg.Subject,
		"text":    msg.Plain(),
	}, map[string]string{"Authorization": "Bearer " + r.Key})
	return eris.Wrap(err, "resend: send email")
}

// Webhook posts the message as JSON to a fixed URL.
type Webhook struct {
	URL    string
	Client *http.Client
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Send(ctx context.Context, msg Message) error {
	return eris.Wrap(postJSON(ctx, w.Client, w.URL, msg, nil), "webhook: post")
}
