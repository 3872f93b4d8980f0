package dedup

import (
	"log"
	"sync"
	"time"
)

// ==================== 去重冷却缓存 ====================

// 默认参数
// TTL 内同一 (origin, code) 只提示一次；全局冷却防止多个 code 连续触发形成提示风暴
const (
	DefaultTTL           = 10 * time.Minute
	DefaultCooldown      = 4 * time.Second
	DefaultSweepInterval = 1 * time.Minute
	DefaultMaxEntries    = 512
)

// Entry 一条观测记录
// Suppressed 表示用户明确关闭过提示；ShouldSkip 判定时两者同等对待
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Suppressed bool      `json:"suppressed"`
}

// Cache 按 (origin, code) 去重的进程内缓存
// 纯内存状态，不跨重启持久化；生命周期由持有方 Start/Stop 控制
type Cache struct {
	mu          sync.Mutex
	entries     map[string]Entry
	lastTrigger time.Time

	ttl        time.Duration
	cooldown   time.Duration
	sweepEvery time.Duration
	maxEntries int

	now  func() time.Time // 测试可注入
	stop chan struct{}
}

// NewCache 创建缓存（默认参数）
func NewCache() *Cache {
	return &Cache{
		entries:    make(map[string]Entry),
		ttl:        DefaultTTL,
		cooldown:   DefaultCooldown,
		sweepEvery: DefaultSweepInterval,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
}

// SetNowFunc 注入时钟（仅测试用）
func (c *Cache) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func cacheKey(origin, code string) string {
	return origin + "|" + code
}

// ==================== 判定 ====================

// ShouldSkip 判断该 (origin, code) 是否应跳过提示
// TTL 窗口内出现过即跳过，无论当时是 seen 还是 suppressed
func (c *Cache) ShouldSkip(origin, code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey(origin, code)]
	if !ok {
		return false
	}
	return c.now().Sub(e.Timestamp) < c.ttl
}

// IsInCooldown 全局冷却判定，与具体 code 无关
func (c *Cache) IsInCooldown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastTrigger.IsZero() {
		return false
	}
	return c.now().Sub(c.lastTrigger) < c.cooldown
}

// ==================== 写入 ====================

// MarkSeen 记录一次观测，刷新条目时间并触发全局冷却
func (c *Cache) MarkSeen(origin, code string) {
	c.upsert(origin, code, false)
}

// MarkSuppressed 记录一次用户明确关闭，效果同 MarkSeen 但保留 suppressed 标记
func (c *Cache) MarkSuppressed(origin, code string) {
	c.upsert(origin, code, true)
}

func (c *Cache) upsert(origin, code string, suppressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	key := cacheKey(origin, code)

	// 条目数兜底：先清过期，仍超限则淘汰最旧
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxEntries {
		c.cleanupLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}

	e := c.entries[key]
	e.Timestamp = now
	// suppressed 只升不降：MarkSeen 不抹掉用户的关闭记录
	if suppressed {
		e.Suppressed = true
	}
	c.entries[key] = e
	c.lastTrigger = now
}

// Destroy 显式删除一条记录
func (c *Cache) Destroy(origin, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(origin, code))
}

// Entry 查询原始条目（含 suppressed 标记），供需要区分两种结局的调用方使用
func (c *Cache) Entry(origin, code string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[cacheKey(origin, code)]
	return e, ok
}

// Count 当前条目数
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ==================== 清理 ====================

// Cleanup 删除所有超过 TTL 的条目
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleanupLocked(c.now())
}

func (c *Cache) cleanupLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.Timestamp) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.Timestamp.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.Timestamp
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// ==================== 后台巡检 ====================

// Start 启动定期清理
func (c *Cache) Start() {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := c.Cleanup(); n > 0 {
					log.Printf("[DedupCache] 清理过期条目 %d 条", n)
				}
			case <-stop:
				return
			}
		}
	}()
}

// Stop 停止定期清理
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}
