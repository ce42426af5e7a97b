package lattice

import (
	"context"

	"go.uber.org/zap"
)

// Callback receives the decoded JSON result of an asynchronous query.
// Ownership of the value passes entirely to the callback.
type Callback func(result any)

// FindLatticeNamesAsync issues a name query in the background and
// invokes callback exactly once with the decoded JSON response.
//
// This is the fire-and-forget surface kept for compatibility with the
// original web client: when no name-query endpoint is configured, the
// call logs a diagnostic naming the missing configuration key and
// returns without invoking the callback and without issuing any
// request. Transport and decode failures are logged and dropped; the
// callback is never invoked with a partial result. There is no
// cancellation once a request is issued, and callbacks from concurrent
// calls run in response-arrival order, not call order.
func (c *Client) FindLatticeNamesAsync(query string, callback Callback) {
	c.queryAsync(c.config.namesURL(), ConfigKeyNamesURL, query, callback)
}

// FindLatticeBranchesAsync issues a branch query in the background.
// Identical contract to FindLatticeNamesAsync, bound to the
// branch-query endpoint.
func (c *Client) FindLatticeBranchesAsync(query string, callback Callback) {
	c.queryAsync(c.config.branchesURL(), ConfigKeyBranchesURL, query, callback)
}

// queryAsync is the shared POST helper behind both async operations.
// It carries no state of its own.
func (c *Client) queryAsync(endpoint, configKey, query string, callback Callback) {
	if endpoint == "" {
		c.logger.Warn("lattice query dropped: endpoint not configured",
			zap.String("config_key", configKey))
		return
	}

	go func() {
		var result any
		if err := c.transport.postQuery(context.Background(), endpoint, query, &result); err != nil {
			c.logger.Warn("lattice query failed",
				zap.String("endpoint", endpoint),
				zap.Error(err))
			return
		}
		callback(result)
	}()
}
