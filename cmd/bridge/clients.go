package main

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// clientTTL is how long an unused Intercom client is kept.
	clientTTL = 30 * time.Minute

	clientCleanupInterval = 10 * time.Minute
)

// clientCache keeps one Intercom client per access token, so repeated requests for the same workspace share
// the client and its rate limiter.
type clientCache struct {
	clients *cache.Cache
	create  intercomFactory
}

func newClientCache(create intercomFactory) *clientCache {
	return &clientCache{
		clients: cache.New(clientTTL, clientCleanupInterval),
		create:  create,
	}
}

// get returns the client for the token. Failed creations are not cached.
func (c *clientCache) get(token string) (intercomAPI, error) {
	if v, ok := c.clients.Get(token); ok {
		// Using the client extends its life.
		c.clients.Set(token, v, cache.DefaultExpiration)
		return v.(intercomAPI), nil
	}

	api, err := c.create(token)
	if err != nil {
		return nil, err
	}
	c.clients.Set(token, api, cache.DefaultExpiration)
	return api, nil
}
