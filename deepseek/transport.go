package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const completionsPath = "/chat/completions"

// HTTPDoer is the transport the client sends requests through.
// *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// exchange performs exactly one POST and returns the raw status and body.
// It does not interpret either.
func (c *Client) exchange(ctx context.Context, req ChatRequest) (int, []byte, error) {
	payload, err := c.encodeRequest(req)
	if err != nil {
		return 0, nil, serializationError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, networkError(fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, networkError(fmt.Errorf("read response: %w", err))
	}

	return resp.StatusCode, body, nil
}

func (c *Client) encodeRequest(req ChatRequest) ([]byte, error) {
	if req.Messages == nil {
		req.Messages = []Message{}
	}
	if req.Stream != nil && *req.Stream {
		c.logger.Warn("streaming is not supported, sending stream=false")
		disabled := false
		req.Stream = &disabled
	}
	return json.Marshal(req)
}
