package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/marketpulse/marketpulse/internal/cache"
)

type countingRecorder struct {
	lookups map[string]int
	writes  map[bool]int
	events  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		lookups: map[string]int{},
		writes:  map[bool]int{},
		events:  map[string]int{},
	}
}

func (r *countingRecorder) RecordCacheLookup(result string) { r.lookups[result]++ }
func (r *countingRecorder) RecordCacheWrite(success bool)   { r.writes[success]++ }
func (r *countingRecorder) RecordCredentialEvent(event string, success bool) {
	r.events[event]++
}

func TestInstrumentedCache_LookupOutcomes(t *testing.T) {
	ctx := context.Background()
	recorder := newCountingRecorder()
	c := InstrumentCache[string](cache.NewMemoryCache[string](), recorder)

	if _, err := c.Get(ctx, "absent"); err != cache.ErrCacheMiss {
		t.Fatalf("expected miss, got %v", err)
	}
	if recorder.lookups["miss"] != 1 {
		t.Errorf("miss not recorded: %v", recorder.lookups)
	}

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	if recorder.writes[true] != 1 {
		t.Errorf("write not recorded: %v", recorder.writes)
	}

	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if recorder.lookups["hit"] != 1 {
		t.Errorf("hit not recorded: %v", recorder.lookups)
	}
}

func TestInstrumentedCache_PassThrough(t *testing.T) {
	ctx := context.Background()
	recorder := newCountingRecorder()
	c := InstrumentCache[string](cache.NewMemoryCache[string](), recorder)

	if err := c.Set(ctx, "user_id=u1:a", "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteByPrefix(ctx, "user_id=u1:"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "user_id=u1:a"); err != cache.ErrCacheMiss {
		t.Fatalf("expected miss after prefix delete, got %v", err)
	}
	if err := c.Health(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestInit_DisabledReturnsNoop(t *testing.T) {
	if _, ok := Init(false).(*NoopMetrics); !ok {
		t.Fatal("disabled metrics should be the noop recorder")
	}
}
