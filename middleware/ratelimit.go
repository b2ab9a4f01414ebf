package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/yshengliao/convroute/pkg/errors"
)

// RateLimiter decides whether the caller identified by key may proceed
type RateLimiter interface {
	Allow(key string) bool
	Reset(key string)
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Rate is the number of requests per second
	Rate int

	// Burst is the maximum burst size
	Burst int

	// KeyFunc extracts the key from the request. Defaults to the client IP.
	KeyFunc func(c echo.Context) string

	// ErrorHandler writes the rejection
	ErrorHandler func(c echo.Context) error

	// Skipper determines if rate limiting should be skipped
	Skipper func(c echo.Context) bool

	// Store is the rate limiter implementation. Defaults to a MemoryStore.
	Store RateLimiter
}

// limiterEntry holds a rate limiter and its last access time
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// MemoryStore keeps one token bucket per key in memory. Buckets unused for
// longer than the TTL are dropped periodically.
type MemoryStore struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu       sync.Mutex
	limiters map[string]*limiterEntry

	ticker   *time.Ticker
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a store allowing r requests per second with bursts
// of b, sweeping idle buckets every minute
func NewMemoryStore(r, b int) *MemoryStore {
	return NewMemoryStoreWithTTL(r, b, time.Minute, 10*time.Minute)
}

// NewMemoryStoreWithTTL creates a store sweeping every interval for buckets
// idle longer than ttl
func NewMemoryStoreWithTTL(r, b int, interval, ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		limit:    rate.Limit(r),
		burst:    b,
		ttl:      ttl,
		limiters: make(map[string]*limiterEntry),
		ticker:   time.NewTicker(interval),
		stopped:  make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Allow consumes one token of key's bucket
func (s *MemoryStore) Allow(key string) bool {
	now := time.Now()

	s.mu.Lock()
	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastAccess = now
	s.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Reset drops the bucket of key
func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	delete(s.limiters, key)
	s.mu.Unlock()
}

// Size returns the current number of buckets
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// Stop stops the sweep goroutine
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.stopped)
	})
}

func (s *MemoryStore) sweepLoop() {
	for {
		select {
		case now := <-s.ticker.C:
			s.sweep(now)
		case <-s.stopped:
			return
		}
	}
}

func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.limiters {
		if now.Sub(entry.lastAccess) > s.ttl {
			delete(s.limiters, key)
		}
	}
}

// RateLimit returns a middleware rejecting callers over their rate with 429
func RateLimit(config RateLimitConfig) echo.MiddlewareFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string { return c.RealIP() }
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = rateLimitExceeded
	}
	if config.Store == nil {
		config.Store = NewMemoryStore(config.Rate, config.Burst)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}
			if !config.Store.Allow(config.KeyFunc(c)) {
				return config.ErrorHandler(c)
			}
			return next(c)
		}
	}
}

func rateLimitExceeded(c echo.Context) error {
	c.Response().Header().Set("Retry-After", "1")
	return SendError(c, errors.NewFromCode(errors.CodeRateLimitExceeded))
}
