package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultEndpoint = "https://exp.host/--/api/v2/push/send"

// Expo caps a single send request at 100 messages.
const maxBatchSize = 100

// Message is a single push payload for the Expo push gateway.
type Message struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Client submits batched push messages to the Expo push HTTP endpoint.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// NewClient reads EXPO_PUSH_URL and EXPO_ACCESS_TOKEN from the environment.
// The access token is optional; without it requests are unauthenticated.
func NewClient() *Client {
	endpoint := os.Getenv("EXPO_PUSH_URL")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return &Client{
		endpoint:    endpoint,
		accessToken: os.Getenv("EXPO_ACCESS_TOKEN"),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Send submits messages in batches. Delivery is best effort: the first
// transport or gateway error aborts and is returned to the caller, who is
// expected to log it rather than fail the surrounding operation.
func (c *Client) Send(ctx context.Context, messages []Message) error {
	for start := 0; start < len(messages); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(messages) {
			end = len(messages)
		}
		if err := c.sendBatch(ctx, messages[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendBatch(ctx context.Context, batch []Message) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
