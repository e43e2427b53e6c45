package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter is a token bucket per client and route. It guards the
// credential endpoints against guessing.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	burst      float64
	refillRate float64 // tokens per second
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewRateLimiter allows burst requests per window for each client.
func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:    make(map[string]*bucket),
		burst:      float64(burst),
		refillRate: float64(burst) / window.Seconds(),
		stop:       make(chan struct{}),
	}
	go rl.evictLoop(5*time.Minute, 10*time.Minute)
	return rl
}

func (rl *RateLimiter) evictLoop(every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evict(time.Now(), idle)
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) evict(now time.Time, idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(rl.buckets, key)
		}
	}
}

// take spends one token from key's bucket. When the bucket is empty it
// reports how long until the next token.
func (rl *RateLimiter) take(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		rl.buckets[key] = &bucket{tokens: rl.burst - 1, lastSeen: now}
		return true, 0
	}

	b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.lastSeen).Seconds()*rl.refillRate)
	b.lastSeen = now
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / rl.refillRate * float64(time.Second))
	return false, wait
}

func (rl *RateLimiter) allow(key string) bool {
	ok, _ := rl.take(key, time.Now())
	return ok
}

func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + " " + c.FullPath()
		ok, wait := rl.take(key, time.Now())
		if !ok {
			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(wait.Seconds()))))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			c.Abort()
			return
		}
		c.Next()
	}
}
