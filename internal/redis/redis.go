// Package redis connects the session store to a Redis server.
package redis

import (
	"fmt"
	"time"

	"cattlecloud.net/go/scope"
	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

type Client struct {
	*goredis.Client
}

// New connects to the server at addr and verifies that it answers.
func New(addr, password string) (*Client, error) {
	c := &Client{Client: goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})}

	if err := c.Healthy(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: connect %s: %w", addr, err)
	}

	return c, nil
}

// Healthy pings the server, giving up after a short timeout.
func (c *Client) Healthy() error {
	ctx, cancel := scope.TTL(pingTimeout)
	defer cancel()

	return c.Ping(ctx).Err()
}
