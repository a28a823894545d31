package httpclient

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter is a process-global per-host throttle: a concurrency semaphore
// (so many goroutines can't hold open connections to one upstream at once)
// combined with a request rate limiter (so back-to-back imports don't hammer
// a provider that just served a multi-hundred-MB guide).
//
// Usage: acquire before sending a request, release when the response arrives.
//
//	release, err := GlobalHostLimiter.Acquire(ctx, url)
//	if err != nil { return err }
//	defer release()
type HostLimiter struct {
	mu       sync.Mutex
	sems     map[string]chan struct{}
	limiters map[string]*rate.Limiter
	slots    int
	rps      rate.Limit
	burst    int
}

// GlobalHostLimiter is the shared per-host throttle. Default: 4 concurrent
// requests and 2 requests/second (burst 4) per host across the process.
var GlobalHostLimiter = NewHostLimiter(4, rate.Limit(2), 4)

func NewHostLimiter(slots int, rps rate.Limit, burst int) *HostLimiter {
	if slots < 1 {
		slots = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		sems:     make(map[string]chan struct{}),
		limiters: make(map[string]*rate.Limiter),
		slots:    slots,
		rps:      rps,
		burst:    burst,
	}
}

// Acquire waits for the host's rate limiter and a concurrency slot, then
// returns a release func. Returns ctx.Err() if the context ends first.
// rawURL may be a full URL; only scheme+host are used as the key.
func (h *HostLimiter) Acquire(ctx context.Context, rawURL string) (func(), error) {
	key := hostKey(rawURL)
	sem, lim := h.forHost(key)
	if err := lim.Wait(ctx); err != nil {
		return nil, err
	}
	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *HostLimiter) forHost(key string) (chan struct{}, *rate.Limiter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sem, ok := h.sems[key]
	if !ok {
		sem = make(chan struct{}, h.slots)
		h.sems[key] = sem
	}
	lim, ok := h.limiters[key]
	if !ok {
		lim = rate.NewLimiter(h.rps, h.burst)
		h.limiters[key] = lim
	}
	return sem, lim
}

func hostKey(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return rawURL
}
