package dedup

import (
	"testing"
	"time"
)

// fakeClock 可拨动的测试时钟
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache()
	c.SetNowFunc(clock.now)
	return c, clock
}

func TestDedupCache_TTL(t *testing.T) {
	c, clock := newTestCache()

	c.MarkSeen("https://a.example.com", "CODE-1")
	if !c.ShouldSkip("https://a.example.com", "CODE-1") {
		t.Fatal("刚记录过的条目应跳过")
	}
	if c.ShouldSkip("https://a.example.com", "CODE-2") {
		t.Fatal("不同 code 不应跳过")
	}
	if c.ShouldSkip("https://b.example.com", "CODE-1") {
		t.Fatal("不同 origin 不应跳过")
	}

	// 超过 TTL 后清理，条目失效
	clock.advance(DefaultTTL + time.Second)
	c.Cleanup()
	if c.ShouldSkip("https://a.example.com", "CODE-1") {
		t.Fatal("TTL 过后不应再跳过")
	}
	if c.Count() != 0 {
		t.Errorf("清理后应无条目，实际 %d", c.Count())
	}
}

func TestDedupCache_CooldownIndependentOfCode(t *testing.T) {
	c, clock := newTestCache()

	c.MarkSeen("https://a.example.com", "codeA")
	if !c.IsInCooldown() {
		t.Fatal("MarkSeen 后应进入全局冷却")
	}

	// 冷却与查询哪个 code 无关
	if c.ShouldSkip("https://a.example.com", "codeB") {
		t.Fatal("codeB 未记录过，不应跳过")
	}
	if !c.IsInCooldown() {
		t.Fatal("冷却判定不应受其他 code 查询影响")
	}

	clock.advance(DefaultCooldown + time.Millisecond)
	if c.IsInCooldown() {
		t.Fatal("冷却窗口过后应解除")
	}
}

func TestDedupCache_ShouldSkipIgnoresSuppressedFlag(t *testing.T) {
	c, _ := newTestCache()

	c.MarkSeen("https://a.example.com", "seen-code")
	c.MarkSuppressed("https://a.example.com", "sup-code")

	// 现状：两种结局在跳过判定上同权（保持原行为，调用方通过 Entry 自行区分）
	if !c.ShouldSkip("https://a.example.com", "seen-code") {
		t.Fatal("seen 条目应跳过")
	}
	if !c.ShouldSkip("https://a.example.com", "sup-code") {
		t.Fatal("suppressed 条目应跳过")
	}

	e, ok := c.Entry("https://a.example.com", "sup-code")
	if !ok || !e.Suppressed {
		t.Fatal("Entry 应暴露 suppressed 标记")
	}
	e, ok = c.Entry("https://a.example.com", "seen-code")
	if !ok || e.Suppressed {
		t.Fatal("seen 条目不应带 suppressed 标记")
	}
}

func TestDedupCache_MarkSeenRefreshesEntry(t *testing.T) {
	c, clock := newTestCache()

	c.MarkSeen("https://a.example.com", "CODE")
	clock.advance(DefaultTTL - time.Minute)

	// 再次观测刷新时间戳，寿命顺延
	c.MarkSeen("https://a.example.com", "CODE")
	clock.advance(2 * time.Minute)
	c.Cleanup()

	if !c.ShouldSkip("https://a.example.com", "CODE") {
		t.Fatal("刷新过的条目不应被清理")
	}
}

func TestDedupCache_SuppressedSurvivesReSeen(t *testing.T) {
	c, _ := newTestCache()

	c.MarkSuppressed("https://a.example.com", "CODE")
	c.MarkSeen("https://a.example.com", "CODE")

	e, ok := c.Entry("https://a.example.com", "CODE")
	if !ok || !e.Suppressed {
		t.Fatal("重复观测不应抹掉 suppressed 标记")
	}
}

func TestDedupCache_Destroy(t *testing.T) {
	c, _ := newTestCache()

	c.MarkSeen("https://a.example.com", "CODE")
	c.Destroy("https://a.example.com", "CODE")

	if c.ShouldSkip("https://a.example.com", "CODE") {
		t.Fatal("显式删除后不应跳过")
	}
}

func TestDedupCache_BoundedEntries(t *testing.T) {
	c, clock := newTestCache()

	for i := 0; i < DefaultMaxEntries+10; i++ {
		c.MarkSeen("https://a.example.com", string(rune('A'+i%26))+time.Duration(i).String())
		clock.advance(time.Millisecond)
	}
	if c.Count() > DefaultMaxEntries {
		t.Errorf("条目数应被限制在 %d 以内，实际 %d", DefaultMaxEntries, c.Count())
	}
}
