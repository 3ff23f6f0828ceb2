package cache

import (
	"context"
	"testing"
	"time"

	"github.com/autou/mail-triage/internal/core"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func testResult() *core.ClassificationResult {
	return &core.ClassificationResult{
		Category:          core.CategoryProductive,
		Confidence:        0.82,
		SuggestedResponse: "Recebi sua mensagem.",
		ModelUsed:         core.ModelRules,
		Timestamp:         time.Now().UTC(),
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestCache(t)

	if _, found := c.Get("missing"); found {
		t.Error("unexpected hit on empty cache")
	}

	want := testResult()
	c.Set("key-1", want, time.Minute)

	got, found := c.Get("key-1")
	if !found {
		t.Fatal("expected cache hit")
	}
	if got.Category != want.Category || got.Confidence != want.Confidence ||
		got.SuggestedResponse != want.SuggestedResponse {
		t.Errorf("cached result differs: %+v vs %+v", got, want)
	}

	// The cache hands out copies, not the stored value
	got.Category = core.CategoryUnproductive
	again, _ := c.Get("key-1")
	if again.Category != core.CategoryProductive {
		t.Error("mutating a returned result leaked into the cache")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t)

	c.Set("fleeting", testResult(), -time.Second)
	if _, found := c.Get("fleeting"); found {
		t.Error("expired entry served")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t)

	c.Set("key-1", testResult(), time.Minute)
	if err := c.Delete(context.Background(), "key-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found := c.Get("key-1"); found {
		t.Error("deleted entry served")
	}
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestCache(t)

	c.Set("stale", testResult(), -time.Second)
	c.Set("fresh", testResult(), time.Hour)

	if err := c.Cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if _, found := c.Get("stale"); found {
		t.Error("cleanup kept the expired entry")
	}
	if _, found := c.Get("fresh"); !found {
		t.Error("cleanup dropped the live entry")
	}
}
