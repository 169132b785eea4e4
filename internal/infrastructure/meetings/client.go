package meetings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// Client talks to the external meeting-management service. Every call is
// bounded by the configured timeout; callers treat failures as log-only
// (presence state is the local source of truth and is never rolled back).
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

type participantPayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
}

// AddParticipant reports that a user is now present in a meeting.
func (c *Client) AddParticipant(ctx context.Context, meetingID, userID, name string) error {
	path := fmt.Sprintf("/api/meetings/%s/participants", url.PathEscape(meetingID))
	return c.do(ctx, http.MethodPost, path, participantPayload{UserID: userID, Name: name})
}

// RemoveParticipant reports that a user is no longer present in a meeting.
func (c *Client) RemoveParticipant(ctx context.Context, meetingID, userID, name string) error {
	path := fmt.Sprintf("/api/meetings/%s/participants/%s", url.PathEscape(meetingID), url.PathEscape(userID))
	return c.do(ctx, http.MethodDelete, path, participantPayload{UserID: userID, Name: name})
}

// do issues one JSON request with the bearer token and reports non-2xx
// responses as errors.
func (c *Client) do(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("meeting service request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("meeting service returned %s for %s %s", resp.Status, method, path)
	}

	return nil
}
