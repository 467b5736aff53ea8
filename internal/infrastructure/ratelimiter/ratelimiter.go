package ratelimiter

import (
	"math"
	"net/http"
	"sync"
	"time"
)

const (
	bucketKeyPrefix   = "rl:bucket:"
	lastFillKeyPrefix = "rl:fill:"
)

type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

// RateLimiter is a token bucket per source key, stored in a pluggable cache.
type RateLimiter struct {
	ratePerMillisecond float64
	maxBurst           int
	cache              GetterSetter
	cacheTTL           time.Duration
	sourceHeaderKey    string
	// Per-key locks so refill+take is atomic for each source
	locks sync.Map // map[string]*sync.Mutex
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	Cache            GetterSetter
	CacheTTL         time.Duration
	SourceHeaderKey  string
}

func New(options Options) Limiter {
	if options.Cache == nil {
		options.Cache = NewInMemory()
	}
	if options.CacheTTL == 0 {
		options.CacheTTL = 10 * time.Second
	}
	if options.MaxRatePerSecond <= 0 {
		options.MaxRatePerSecond = 10
	}
	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond * 2
	}

	return &RateLimiter{
		ratePerMillisecond: float64(options.MaxRatePerSecond) / 1000.0,
		maxBurst:           options.MaxBurst,
		cache:              options.Cache,
		cacheTTL:           options.CacheTTL,
		sourceHeaderKey:    options.SourceHeaderKey,
	}
}

func (rl *RateLimiter) getLock(sourceKey string) *sync.Mutex {
	lock, _ := rl.locks.LoadOrStore(sourceKey, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

type bucketState struct {
	tokens   int
	lastFill int64 // Unix milliseconds
}

func (rl *RateLimiter) getState(sourceKey string) bucketState {
	tokens, tokensErr := rl.cache.Get(bucketKeyPrefix + sourceKey)
	lastFill, fillErr := rl.cache.Get(lastFillKeyPrefix + sourceKey)

	// Miss or cache failure: fail open with a full bucket
	if tokensErr != nil || fillErr != nil {
		return bucketState{
			tokens:   rl.maxBurst,
			lastFill: time.Now().UnixMilli(),
		}
	}

	return bucketState{
		tokens:   tokens,
		lastFill: int64(lastFill),
	}
}

func (rl *RateLimiter) setState(sourceKey string, state bucketState) {
	_ = rl.cache.SetWithExpiration(bucketKeyPrefix+sourceKey, state.tokens, rl.cacheTTL)
	_ = rl.cache.SetWithExpiration(lastFillKeyPrefix+sourceKey, int(state.lastFill), rl.cacheTTL)
}

func (rl *RateLimiter) refill(state bucketState, now int64) bucketState {
	elapsed := now - state.lastFill
	if elapsed <= 0 {
		return state
	}

	tokens := float64(state.tokens) + float64(elapsed)*rl.ratePerMillisecond
	if tokens > float64(rl.maxBurst) {
		tokens = float64(rl.maxBurst)
	}

	return bucketState{
		tokens:   int(math.Floor(tokens)), // whole tokens only
		lastFill: now,
	}
}

func (rl *RateLimiter) Allow(sourceKey string) bool {
	lock := rl.getLock(sourceKey)
	lock.Lock()
	defer lock.Unlock()

	state := rl.refill(rl.getState(sourceKey), time.Now().UnixMilli())
	if state.tokens <= 0 {
		rl.setState(sourceKey, state)
		return false
	}

	state.tokens--
	rl.setState(sourceKey, state)
	return true
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	lock := rl.getLock(sourceKey)
	lock.Lock()
	defer lock.Unlock()

	state := rl.refill(rl.getState(sourceKey), time.Now().UnixMilli())
	rl.setState(sourceKey, state)
	return state.tokens
}

func (rl *RateLimiter) GetMaxBurst() int {
	return rl.maxBurst
}

func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if rl.sourceHeaderKey != "" {
		if key := r.Header.Get(rl.sourceHeaderKey); key != "" {
			return key
		}
	}

	// Fall back to IP address
	return r.RemoteAddr
}
