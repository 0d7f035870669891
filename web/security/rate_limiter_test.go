package security

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(perSec float64, burst int) *rateLimiterImpl {
	rl := NewRateLimiter(&RateLimitConfig{PerSecond: perSec, Burst: burst}).(*rateLimiterImpl)
	return rl
}

// TestRateLimiter_Allow_Normal 测试正常流量允许通过
func TestRateLimiter_Allow_Normal(t *testing.T) {
	limiter := newTestLimiter(10, 20)
	defer limiter.Close()

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow("192.168.1.100"), "正常流量应该被允许通过")
	}
}

// TestRateLimiter_Allow_Exceed 测试超过阈值被拒绝
func TestRateLimiter_Allow_Exceed(t *testing.T) {
	limiter := newTestLimiter(1, 1)
	defer limiter.Close()

	ip := "192.168.1.100"
	assert.True(t, limiter.Allow(ip), "第一个请求应该被允许")
	assert.False(t, limiter.Allow(ip), "超过速率限制的请求应该被拒绝")

	time.Sleep(time.Second)
	assert.True(t, limiter.Allow(ip), "等待后应该允许新请求")
}

// TestRateLimiter_Whitelist 测试白名单IP始终允许
func TestRateLimiter_Whitelist(t *testing.T) {
	limiter := newTestLimiter(1, 1)
	defer limiter.Close()

	limiter.AddWhitelist("192.168.1.100")
	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow("192.168.1.100"))
	}

	assert.True(t, limiter.Allow("192.168.1.101"))
	assert.False(t, limiter.Allow("192.168.1.101"))
}

func TestRateLimiter_Unlimited(t *testing.T) {
	limiter := newTestLimiter(0, 0)
	defer limiter.Close()

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"))
	}
}

// TestRateLimiter_Concurrent 测试并发场景下的正确性
func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := newTestLimiter(1, 5)
	defer limiter.Close()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("10.0.0.2") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, allowed.Load(), int32(6))
	assert.GreaterOrEqual(t, allowed.Load(), int32(5))
}

func TestRateLimiter_CleanupExpired(t *testing.T) {
	limiter := newTestLimiter(5, 5)
	defer limiter.Close()

	for i := 0; i < 3; i++ {
		limiter.Allow(fmt.Sprintf("10.0.1.%d", i))
	}
	limiter.mutex.Lock()
	limiter.limiters["10.0.1.0"].lastSeen = time.Now().Add(-2 * time.Hour)
	limiter.mutex.Unlock()

	limiter.cleanupExpiredLimiters()

	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	assert.Len(t, limiter.limiters, 2)
	assert.NotContains(t, limiter.limiters, "10.0.1.0")
}
