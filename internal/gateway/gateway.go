// Package gateway is the HTTP client for the third-party push service. The
// service accepts a POST of either one message object or an array of them and
// answers with per-message tickets. Batched sends are fire-and-forget: we
// check the transport outcome only. Single sends surface the ticket so the
// caller can show the gateway's own error to an operator.
package gateway

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Message is one outbound push, shaped the way the gateway expects it
type Message struct {
	To        string                 `json:"to"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Priority  string                 `json:"priority,omitempty"`
	Sound     string                 `json:"sound,omitempty"`
	ChannelID string                 `json:"channelId,omitempty"`
}

// Ticket is the gateway's structured per-message result
type Ticket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// OK reports whether the ticket marks a successful hand-off
func (t Ticket) OK() bool {
	return t.Status == "ok"
}

// ErrorText renders the gateway's own error verbatim, as "Message (Code)"
// when a code is present
func (t Ticket) ErrorText() string {
	if t.OK() {
		return ""
	}
	if t.Code != "" {
		return fmt.Sprintf("%s (%s)", t.Message, t.Code)
	}
	return t.Message
}

type response struct {
	Data []Ticket `json:"data"`
}

// Client talks to one push gateway endpoint
type Client struct {
	http *resty.Client
	url  string
}

// NewClient builds a gateway client. accessToken may be empty for gateways
// that do not require one.
func NewClient(url, accessToken string) *Client {
	http := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if accessToken != "" {
		http.SetAuthToken(accessToken)
	}
	return &Client{
		http: http,
		url:  url,
	}
}

// SendBatch submits all messages in a single call. Per-message tickets are
// not inspected; only a transport-level or HTTP-level failure is an error.
// An empty batch is a no-op.
func (c *Client) SendBatch(ctx context.Context, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(messages).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("push gateway request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push gateway responded with status %d", resp.StatusCode())
	}

	return nil
}

// SendOne submits exactly one message and returns its ticket. This is the
// only path that parses per-message gateway results.
func (c *Client) SendOne(ctx context.Context, message Message) (Ticket, error) {
	var parsed response

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(message).
		SetResult(&parsed).
		Post(c.url)
	if err != nil {
		return Ticket{}, fmt.Errorf("push gateway request failed: %w", err)
	}
	if resp.IsError() {
		return Ticket{}, fmt.Errorf("push gateway responded with status %d", resp.StatusCode())
	}
	if len(parsed.Data) == 0 {
		return Ticket{}, fmt.Errorf("push gateway returned no ticket")
	}

	return parsed.Data[0], nil
}
