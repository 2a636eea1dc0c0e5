package ratelimit

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// Policy is a delay band for one provider. Max == Min means a fixed delay;
// otherwise the wait is drawn uniformly from [Min, Max).
type Policy struct {
	Min time.Duration
	Max time.Duration
}

func (p Policy) delay() time.Duration {
	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + time.Duration(rand.Int63n(int64(p.Max-p.Min)))
}

// Limiter spaces out provider requests with jittered delays. It keeps no
// per-provider state; every Wait is an independent draw, so it is safe for
// concurrent use.
type Limiter struct {
	policies map[string]Policy
	fallback Policy
}

// Default delay bands. FRED throttles aggressively, Tiingo less so, Binance
// market data barely at all.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		"fred":    {Min: 1500 * time.Millisecond, Max: 3000 * time.Millisecond},
		"tiingo":  {Min: 1000 * time.Millisecond, Max: 2000 * time.Millisecond},
		"binance": {Min: 100 * time.Millisecond, Max: 100 * time.Millisecond},
	}
}

const fallbackDelay = 100 * time.Millisecond

func New(policies map[string]Policy) *Limiter {
	l := &Limiter{
		policies: make(map[string]Policy, len(policies)),
		fallback: Policy{Min: fallbackDelay, Max: fallbackDelay},
	}
	for name, p := range policies {
		l.policies[strings.ToLower(name)] = p
	}
	return l
}

// NewDefault builds a limiter with the built-in bands.
func NewDefault() *Limiter {
	return New(DefaultPolicies())
}

// Delay returns one jittered wait for the provider. Lookup is
// case-insensitive; unknown providers get the fallback delay.
func (l *Limiter) Delay(provider string) time.Duration {
	p, ok := l.policies[strings.ToLower(provider)]
	if !ok {
		p = l.fallback
	}
	return p.delay()
}

// Wait sleeps for one jittered delay, returning early with the context's
// error if it is cancelled.
func (l *Limiter) Wait(ctx context.Context, provider string) error {
	d := l.Delay(provider)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
