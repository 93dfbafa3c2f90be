package skrape

import (
	"context"
	"net/http"
)

// Health checks whether the Skrape API is up.
//
// An "unhealthy" status is a successful call; only transport failures and
// non-2xx responses return an error.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	err := c.call(ctx, operation{
		id:     "health",
		method: http.MethodGet,
		path:   "/health",
	}, &health)
	if err != nil {
		return nil, err
	}
	return &health, nil
}
