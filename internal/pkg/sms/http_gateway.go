package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrGatewayURLRequired is returned when SendURL/HealthURL are missing.
	ErrGatewayURLRequired = errors.New("sms: gateway send and health urls are required")
	// ErrGatewayRecipientRequired is returned when Message.To is empty.
	ErrGatewayRecipientRequired = errors.New("sms: recipient is required")
)

// HTTPGateway is a Sender implementation backed by a JSON-over-HTTP SMS
// gateway that authenticates requests with an API key header.
type HTTPGateway struct {
	sendURL   string
	healthURL string
	apiKey    string
	client    *http.Client
}

// HTTPGatewayConfig configures the HTTP gateway implementation.
type HTTPGatewayConfig struct {
	// SendURL is the endpoint messages are POSTed to.
	SendURL string
	// HealthURL is the endpoint probed by Healthy.
	HealthURL string
	// APIKey is sent as the x-api-key request header.
	APIKey string
	// Timeout bounds each request; defaults to 10 seconds.
	Timeout time.Duration
	// Client overrides the default HTTP client.
	Client *http.Client
}

// NewHTTPGateway constructs an HTTP gateway sender.
func NewHTTPGateway(cfg HTTPGatewayConfig) (*HTTPGateway, error) {
	if cfg.SendURL == "" || cfg.HealthURL == "" {
		return nil, ErrGatewayURLRequired
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPGateway{
		sendURL:   cfg.SendURL,
		healthURL: cfg.HealthURL,
		apiKey:    cfg.APIKey,
		client:    client,
	}, nil
}

type sendPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send POSTs the message to the gateway and treats 200/201 as delivered.
func (g *HTTPGateway) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return ErrGatewayRecipientRequired
	}

	body, err := json.Marshal(sendPayload{To: msg.To, Message: msg.Body})
	if err != nil {
		return fmt.Errorf("sms: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sms: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("sms: gateway responded %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
}

// Healthy probes the gateway health endpoint.
func (g *HTTPGateway) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.healthURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("x-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	return resp.StatusCode == http.StatusOK
}

// Close releases idle connections held by the underlying client.
func (g *HTTPGateway) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
