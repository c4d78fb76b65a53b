package client

import (
	"sync"
	"time"
)

// timedCache 进程级定时缓存。
// 每个key持有独立锁，先无锁检查、拿锁后二次检查，
// 缓存有效期内的并发调用只会触发一次上游请求。
type timedCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
	locks   map[string]*sync.Mutex
}

type cacheEntry struct {
	value    interface{}
	cachedAt time.Time
}

func newTimedCache(ttl time.Duration) *timedCache {
	return &timedCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (tc *timedCache) lookup(key string) (interface{}, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	entry, ok := tc.entries[key]
	if !ok || time.Since(entry.cachedAt) >= tc.ttl {
		return nil, false
	}
	return entry.value, true
}

func (tc *timedCache) keyLock(key string) *sync.Mutex {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	lock, ok := tc.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		tc.locks[key] = lock
	}
	return lock
}

// Get 返回缓存值；未命中时调用fill，fill的第二个返回值决定是否写入缓存
func (tc *timedCache) Get(key string, fill func() (interface{}, bool)) interface{} {
	if value, ok := tc.lookup(key); ok {
		return value
	}

	lock := tc.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	// 等锁期间可能已被其他调用填充
	if value, ok := tc.lookup(key); ok {
		return value
	}

	value, cacheable := fill()
	if cacheable {
		tc.mu.Lock()
		tc.entries[key] = cacheEntry{value: value, cachedAt: time.Now()}
		tc.mu.Unlock()
	}
	return value
}

// 帖子列表1小时内全进程共用一份
var forumListCache = newTimedCache(time.Hour)
