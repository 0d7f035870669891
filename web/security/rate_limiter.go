package security

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter 按 IP 的请求速率限制器
type RateLimiter interface {
	Allow(ip string) bool
	AddWhitelist(ip string)
	Close()
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterImpl 令牌桶速率限制器的实现
type rateLimiterImpl struct {
	limiters  map[string]*clientLimiter
	whitelist map[string]bool
	mutex     sync.Mutex
	perSec    rate.Limit
	burst     int
	idleTTL   time.Duration
	closeChan chan struct{}
	closeOnce sync.Once
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// NewRateLimiter 创建限速器并启动过期清理；PerSecond <= 0 时不限速
func NewRateLimiter(cfg *RateLimitConfig) RateLimiter {
	if cfg == nil {
		cfg = &RateLimitConfig{PerSecond: 2, Burst: 10}
	}
	limit := rate.Limit(cfg.PerSecond)
	if cfg.PerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	rl := &rateLimiterImpl{
		limiters:  make(map[string]*clientLimiter),
		whitelist: make(map[string]bool),
		perSec:    limit,
		burst:     burst,
		idleTTL:   time.Hour,
		closeChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow 检查 IP 是否还有可用令牌
func (rl *rateLimiterImpl) Allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if rl.whitelist[ip] {
		return true
	}

	client, exists := rl.limiters[ip]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.perSec, rl.burst)}
		rl.limiters[ip] = client
	}
	client.lastSeen = time.Now()
	return client.limiter.Allow()
}

// AddWhitelist 添加IP到白名单
func (rl *rateLimiterImpl) AddWhitelist(ip string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.whitelist[ip] = true
}

// Close 停止清理任务
func (rl *rateLimiterImpl) Close() {
	rl.closeOnce.Do(func() { close(rl.closeChan) })
}

// cleanupExpiredLimiters 清理长时间未活动的 IP
func (rl *rateLimiterImpl) cleanupExpiredLimiters() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	threshold := time.Now().Add(-rl.idleTTL)
	for ip, client := range rl.limiters {
		if client.lastSeen.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

func (rl *rateLimiterImpl) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupExpiredLimiters()
		case <-rl.closeChan:
			return
		}
	}
}
