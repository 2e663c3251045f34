package deepseek

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// SendAll sends reqs concurrently, at most limit at a time (limit <= 0 means
// unbounded). Responses are index-aligned with reqs. The first failure
// cancels the requests still in flight and is returned.
func (c *Client) SendAll(ctx context.Context, reqs []ChatRequest, limit int) ([]*ChatResponse, error) {
	out := make([]*ChatResponse, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			resp, err := c.Send(ctx, req)
			if err != nil {
				return err
			}
			out[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
