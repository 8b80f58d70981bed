// Package ratelimit gates outbound flight-provider calls. One ProviderLimiter
// is shared by every search worker so the effective request rate to a provider
// stays fixed no matter how many workers are running.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ProviderLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults RateLimitConfig
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultConfig spaces calls at least half a second apart.
func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 2,
		BurstSize:         1,
	}
}

func NewProviderLimiter(config RateLimitConfig) *ProviderLimiter {
	if config.BurstSize < 1 {
		config.BurstSize = 1
	}
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func NewProviderLimiterWithDefaults() *ProviderLimiter {
	return NewProviderLimiter(DefaultConfig())
}

func (p *ProviderLimiter) GetLimiter(provider string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[provider]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[provider]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(p.defaults.RequestsPerSecond), p.defaults.BurstSize)
	p.limiters[provider] = limiter
	return limiter
}

// SetProviderLimit replaces the limiter for provider. A burst of 1 enforces a
// strict minimum interval of 1/rps between calls.
func (p *ProviderLimiter) SetProviderLimit(provider string, rps float64, burst int) {
	if burst < 1 {
		burst = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.limiters[provider] = rate.NewLimiter(rate.Limit(rps), burst)
}

// WaitIfNeeded blocks until the provider's minimum interval has elapsed since
// the previous call by any caller, or ctx is done.
func (p *ProviderLimiter) WaitIfNeeded(ctx context.Context, provider string) error {
	return p.GetLimiter(provider).Wait(ctx)
}

// MinInterval reports the spacing enforced for provider.
func (p *ProviderLimiter) MinInterval(provider string) time.Duration {
	limit := p.GetLimiter(provider).Limit()
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(limit))
}
