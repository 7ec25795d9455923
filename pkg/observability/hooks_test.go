package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type countingLayout struct {
	mu                          sync.Mutex
	starts, sections, completes int
}

func (h *countingLayout) OnLayoutStart(context.Context, int, int) {
	h.mu.Lock()
	h.starts++
	h.mu.Unlock()
}

func (h *countingLayout) OnSectionComplete(context.Context, string, int, time.Duration, error) {
	h.mu.Lock()
	h.sections++
	h.mu.Unlock()
}

func (h *countingLayout) OnLayoutComplete(context.Context, time.Duration, error) {
	h.mu.Lock()
	h.completes++
	h.mu.Unlock()
}

type silentCache struct{}

func (silentCache) OnCacheHit(context.Context, string)      {}
func (silentCache) OnCacheMiss(context.Context, string)     {}
func (silentCache) OnCacheSet(context.Context, string, int) {}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	Layout().OnLayoutStart(ctx, 10, 3)
	Layout().OnSectionComplete(ctx, "force", 4, time.Second, nil)
	Layout().OnLayoutComplete(ctx, time.Second, nil)
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheSet(ctx, "layout", 1024)
	HTTP().OnRequest(ctx, "POST", "/api/v1/layout", 200, time.Second)

	if _, ok := Layout().(nop); !ok {
		t.Errorf("Layout() = %T, want nop", Layout())
	}
}

func TestSetAndReset(t *testing.T) {
	t.Cleanup(Reset)

	l := &countingLayout{}
	SetLayoutHooks(l)
	SetCacheHooks(silentCache{})
	SetLayoutHooks(nil)

	if Layout() != l {
		t.Error("SetLayoutHooks(nil) replaced the registered hooks")
	}
	if _, ok := Cache().(silentCache); !ok {
		t.Errorf("Cache() = %T", Cache())
	}
	if _, ok := HTTP().(nop); !ok {
		t.Error("setting layout and cache hooks touched HTTP")
	}

	Reset()
	if _, ok := Layout().(nop); !ok {
		t.Error("Reset should restore the no-op hooks")
	}
}

func TestRegister(t *testing.T) {
	t.Cleanup(Reset)

	if Register(struct{}{}) {
		t.Error("Register accepted a value implementing no hooks")
	}
	if !Register(silentCache{}) {
		t.Fatal("Register rejected cache hooks")
	}
	if _, ok := Cache().(silentCache); !ok {
		t.Errorf("Cache() = %T", Cache())
	}
	if _, ok := Layout().(nop); !ok {
		t.Error("cache-only hooks should leave layout hooks alone")
	}
}

func TestConcurrentEvents(t *testing.T) {
	t.Cleanup(Reset)

	l := &countingLayout{}
	SetLayoutHooks(l)

	ctx := context.Background()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Layout().OnLayoutStart(ctx, 5, 2)
			Layout().OnSectionComplete(ctx, "grid", 3, time.Millisecond, nil)
			Layout().OnLayoutComplete(ctx, time.Millisecond, nil)
			SetCacheHooks(silentCache{})
		}()
	}
	wg.Wait()

	if l.starts != 8 || l.sections != 8 || l.completes != 8 {
		t.Errorf("starts=%d sections=%d completes=%d, want 8 each", l.starts, l.sections, l.completes)
	}
}
