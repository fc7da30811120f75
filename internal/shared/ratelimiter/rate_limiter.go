// Package ratelimiter はログイン試行などの操作の頻度を制限します。
package ratelimiter

import (
	"sync"
	"time"
)

// Limiter は固定ウィンドウ方式でキーごとの試行回数を制限します。
// ログインのブルートフォース対策として、キーにはクライアントIPを使います。
type Limiter struct {
	limit    int           // ウィンドウあたりの上限
	interval time.Duration // どの単位でリセットするか

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count     int
	lastReset time.Time
}

// New は新しいLimiterのインスタンスを生成します。
func New(limit int, interval time.Duration) *Limiter {
	return &Limiter{
		limit:    limit,
		interval: interval,
		windows:  make(map[string]*window),
	}
}

// Allow はキーの試行を1回分消費し、上限内であればtrueを返します。
// 上限に達している場合はfalseを返します（待機はしません）。
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		w = &window{lastReset: now}
		l.windows[key] = w
	}

	// interval を過ぎたらカウントリセット
	if now.Sub(w.lastReset) >= l.interval {
		w.count = 0
		w.lastReset = now
	}

	w.count++
	return w.count <= l.limit
}

// Reset はキーのウィンドウを破棄します（ログイン成功時などに使用）。
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}
