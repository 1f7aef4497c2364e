// Package ratelimit limits how often a client may start perturbation batches.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the limit applied to a request.
type Info struct {
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client and rule.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastPrune time.Time
}

// NewLimiter creates a limiter. A nil config disables limiting.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{}
	}
	return &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether clientID may call method path now.
func (l *Limiter) Allow(clientID, method, path string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{}
	}
	rule := l.config.Match(method, path)
	if rule == nil || rule.Limit <= 0 {
		return true, Info{}
	}

	now := l.now()
	b := l.bucket(clientID+" "+method+" "+path, rule, now)

	allowed := b.AllowN(now, 1)
	tokens := b.TokensAt(now)
	info := Info{Limit: rule.Limit, Remaining: max(0, int(tokens))}
	if !allowed {
		info.RetryAfter = time.Duration((1 - tokens) / float64(b.Limit()) * float64(time.Second))
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, rule *Rule, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ttl := l.config.IdleTTL; ttl > 0 && now.Sub(l.lastPrune) > ttl {
		l.pruneLocked(now.Add(-ttl))
		l.lastPrune = now
	}

	b, ok := l.buckets[key]
	if !ok {
		burst := rule.Burst
		if burst <= 0 {
			burst = 1
		}
		every := rule.Window / time.Duration(rule.Limit)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (l *Limiter) pruneLocked(cutoff time.Time) {
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Len returns the number of tracked buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
