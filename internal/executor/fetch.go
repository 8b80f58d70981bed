package executor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dharmasatrya/flightscout/internal/cache"
	"github.com/dharmasatrya/flightscout/internal/models"
	"github.com/dharmasatrya/flightscout/internal/providers"
)

// fetch answers one leg query. Strategies frequently share legs (the direct
// route reappears as the tail of hub routes), so answers are cached and
// identical concurrent queries are collapsed into a single provider call.
func (e *Executor) fetch(ctx context.Context, q models.LegQuery) (*models.ProviderResult, error) {
	name := e.provider.Name()
	if res, ok := e.cache.Get(ctx, name, q); ok {
		return res, nil
	}

	key := cache.Key(name, q)
	call := e.join(ctx, key)
	defer e.leave(key, call)

	ch := e.inflight.DoChan(key, func() (v any, err error) {
		// singleflight re-panics on its own goroutine, out of reach of the
		// strategy's recover.
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Provider %s panicked on %s→%s: %v", name, q.Origin, q.Destination, r)
				err = fmt.Errorf("provider %s panicked: %v", name, r)
			}
		}()

		res, err := e.searchWithRetry(call.ctx, q)
		if err != nil {
			return nil, err
		}
		if err := e.cache.Set(call.ctx, name, q, res); err != nil {
			log.Printf("Failed to cache %s→%s on %s: %v", q.Origin, q.Destination, q.DepartureDate, err)
		}
		return res, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*models.ProviderResult), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// sharedCall is the context one singleflight provider call runs on. It is
// detached from the strategy that started the call, so a caller that times out
// does not fail the others waiting on the same leg. The call is cancelled once
// no caller is left waiting.
type sharedCall struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func (e *Executor) join(ctx context.Context, key string) *sharedCall {
	e.mu.Lock()
	defer e.mu.Unlock()

	call, ok := e.calls[key]
	if !ok {
		callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		call = &sharedCall{ctx: callCtx, cancel: cancel}
		e.calls[key] = call
	}
	call.waiters++
	return call
}

func (e *Executor) leave(key string, call *sharedCall) {
	e.mu.Lock()
	defer e.mu.Unlock()

	call.waiters--
	if call.waiters > 0 {
		return
	}
	call.cancel()
	if e.calls[key] == call {
		delete(e.calls, key)
		// A cancelled call must not be joined by the next caller.
		e.inflight.Forget(key)
	}
}

// searchWithRetry waits on the shared limiter before every attempt, including
// retries, and only retries failures the provider marks as transient.
func (e *Executor) searchWithRetry(ctx context.Context, q models.LegQuery) (*models.ProviderResult, error) {
	var lastErr error

	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 && len(e.config.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(e.config.RetryDelays) {
				delayIdx = len(e.config.RetryDelays) - 1
			}

			select {
			case <-time.After(e.config.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := e.limiter.WaitIfNeeded(ctx, e.provider.Name()); err != nil {
			return nil, err
		}

		res, err := e.provider.Search(ctx, q)
		if err == nil {
			if res == nil {
				res = &models.ProviderResult{Provider: e.provider.Name()}
			}
			return res, nil
		}

		lastErr = err
		log.Printf("Provider %s attempt %d for %s→%s failed: %v", e.provider.Name(), attempt+1, q.Origin, q.Destination, err)
		if !providers.IsRetryable(err) {
			break
		}
	}

	return nil, lastErr
}
