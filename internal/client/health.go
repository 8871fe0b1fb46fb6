package client

import (
	"context"
	"log/slog"
)

const healthEndpoint = "/accounts/health/"

// TestConnection reports whether the backend answers its health check with a 2xx status.
func (c *Client) TestConnection(ctx context.Context) bool {
	res, err := c.Request(ctx, healthEndpoint, RequestOptions{})
	if err != nil {
		c.logger.Warn("api health check failed", slog.String("error", err.Error()))
		return false
	}
	if !res.OK() {
		c.logger.Warn("api health check returned an error", slog.Int("status", res.StatusCode))
		return false
	}
	return true
}
