// Package mail sends transactional email through a Postmark-compatible API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	emailPath   = "/email"
	tokenHeader = "X-Postmark-Server-Token"
)

// Message is the provider's single-email payload.
type Message struct {
	From          string `json:"From"`
	To            string `json:"To"`
	ReplyTo       string `json:"ReplyTo"`
	Subject       string `json:"Subject"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream"`
}

// Sender dispatches one message per call.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// StatusError is a non-success response from the email provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("email provider returned status %d", e.StatusCode)
}

type PostmarkClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewPostmarkClient(baseURL, token string, timeout time.Duration) *PostmarkClient {
	return &PostmarkClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *PostmarkClient) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+emailPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("email request: %w", err)
	}
	defer resp.Body.Close()

	// Read in full so a failure body can be logged.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read email response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}
