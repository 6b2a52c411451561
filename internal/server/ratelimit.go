package server

import (
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiter tracks one token bucket per client address.
type clientLimiter struct {
	mu       sync.Mutex
	clients  map[string]*rate.Limiter
	perSec   rate.Limit
	burst    int
	disabled bool
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	return &clientLimiter{
		clients:  make(map[string]*rate.Limiter),
		perSec:   rate.Limit(perSecond),
		burst:    burst,
		disabled: perSecond <= 0,
	}
}

func (c *clientLimiter) allow(client string) bool {
	if c.disabled {
		return true
	}
	c.mu.Lock()
	lim, ok := c.clients[client]
	if !ok {
		lim = rate.NewLimiter(c.perSec, c.burst)
		c.clients[client] = lim
	}
	c.mu.Unlock()
	return lim.Allow()
}
