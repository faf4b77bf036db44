package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// runSSE follows the one-way fallback stream. It returns nil when the
// stream ended because the consumer was disposed, and an error when the
// stream could not be established, which resumes the WebSocket loop.
func (c *Consumer) runSSE(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/logs/events", nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sse stream: unexpected status %d", resp.StatusCode)
	}

	c.setState(StateOpen)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var env Envelope
		if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &env) != nil {
			continue
		}
		c.handlers.dispatch(env)
	}
	if ctx.Err() != nil {
		return nil
	}
	// The stream dropped on its own. No SSE reconnects; let the
	// WebSocket loop take over again.
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("sse stream: %w", err)
	}
	return errors.New("sse stream ended")
}
