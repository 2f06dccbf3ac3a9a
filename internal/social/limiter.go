package social

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// SendLimiter applies a token bucket per sender. Idle buckets expire.
type SendLimiter struct {
	rate    rate.Limit
	burst   int
	entries *gocache.Cache
}

// NewSendLimiter returns nil (no limiting) when perSecond <= 0.
func NewSendLimiter(perSecond float64, burst int) *SendLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &SendLimiter{
		rate:    rate.Limit(perSecond),
		burst:   burst,
		entries: gocache.New(10*time.Minute, 5*time.Minute),
	}
}

// Allow consumes one token of senderID's bucket.
func (l *SendLimiter) Allow(senderID string) bool {
	if l == nil {
		return true
	}
	if v, ok := l.entries.Get(senderID); ok {
		return v.(*rate.Limiter).Allow()
	}
	lim := rate.NewLimiter(l.rate, l.burst)
	if err := l.entries.Add(senderID, lim, gocache.DefaultExpiration); err != nil {
		// lost the race to another goroutine; use its bucket
		if v, ok := l.entries.Get(senderID); ok {
			return v.(*rate.Limiter).Allow()
		}
	}
	return lim.Allow()
}
