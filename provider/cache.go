package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/util"
	"github.com/asaskevich/EventBus"
	"github.com/benbjohnson/clock"
)

var (
	bus = EventBus.New()
	log = util.NewLogger("cache")
)

const reset = "reset"

// ResetCached invalidates all cached getters
func ResetCached() {
	log.DEBUG.Println("resetting cached values")
	bus.Publish(reset)
}

// cached wraps a getter with a cache
type cached[T any] struct {
	mux     sync.Mutex
	clock   clock.Clock
	updated time.Time
	cache   time.Duration
	val     T
	err     error
}

// Cached wraps a getter with a cache
func Cached[T any](g func() (T, error), cache time.Duration) func() (T, error) {
	cc := CachedCtx(func(_ context.Context) (T, error) {
		return g()
	}, cache)

	return func() (T, error) {
		return cc(context.Background())
	}
}

// CachedCtx wraps a context-aware getter with a cache. The context applies
// to the underlying fetch only when the cache is cold.
func CachedCtx[T any](g func(context.Context) (T, error), cache time.Duration) func(context.Context) (T, error) {
	c := &cached[T]{
		clock: clock.New(),
		cache: cache,
	}

	_ = bus.Subscribe(reset, c.reset)

	return func(ctx context.Context) (T, error) {
		c.mux.Lock()
		defer c.mux.Unlock()

		if c.mustUpdate() {
			c.val, c.err = g(ctx)
			c.updated = c.clock.Now()
		}

		return c.val, c.err
	}
}

func (c *cached[T]) reset() {
	c.mux.Lock()
	c.updated = time.Time{}
	c.mux.Unlock()
}

// mustUpdate refreshes expired values. Transient and auth errors are not
// cached so the next caller retries immediately- caching an auth error
// would serve it for the whole cache window even after a re-login.
func (c *cached[T]) mustUpdate() bool {
	return c.clock.Since(c.updated) > c.cache ||
		errors.Is(c.err, api.ErrMustRetry) ||
		errors.Is(c.err, api.ErrAuthFail)
}
