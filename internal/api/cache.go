package api

import (
	"context" // Context for Redis operations

	"flowcast/internal/utils" // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// cacheClient returns the redis client injected by the route group, or
// nil when none is configured (tests run without one).
func cacheClient(c *gin.Context) *redis.Client {
	if v, ok := c.Get("redisClient"); ok {
		if rdb, ok := v.(*redis.Client); ok {
			return rdb
		}
	}
	return nil
}

// invalidateCart drops a user's cached cart view after a mutation. The
// cart table was already written, so losing the cache only costs a read.
func invalidateCart(c *gin.Context, username string) {
	if rdb := cacheClient(c); rdb != nil {
		_ = utils.DeleteCache(context.Background(), rdb, utils.CartKey(username))
	}
}
