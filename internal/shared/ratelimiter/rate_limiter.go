package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiterInterface は、ログイン試行などの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Allow(key string) bool
}

// RateLimiterは、キー（クライアントIPなど）ごとに一定期間内の試行回数を制限します。
type RateLimiter struct {
	limit    int           // interval あたりの上限
	interval time.Duration // どの単位でリセットするか

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time // テストで差し替え可能にする
}

// bucket は1キー分のカウント状態です。
type bucket struct {
	count     int
	lastReset time.Time
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		buckets:  map[string]*bucket{},
		now:      time.Now,
	}
}

// Allowはキーの試行を1回分消費し、上限内であればtrueを返します。
// 上限に達している場合はfalseを返します。待機は行いません。
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lastReset: now}
		rl.buckets[key] = b
	}

	// interval を過ぎたらカウントリセット
	if now.Sub(b.lastReset) >= rl.interval {
		b.count = 0
		b.lastReset = now
	}

	if b.count >= rl.limit {
		return false
	}
	b.count++
	return true
}
