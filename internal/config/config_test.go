package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	if got := cfg.GetString("app.name"); got != "mail-triage" {
		t.Errorf("app.name = %q", got)
	}

	server := cfg.GetServer()
	if server.ListenAddress != "0.0.0.0:8000" {
		t.Errorf("listen address = %q", server.ListenAddress)
	}
	if server.MaxBatchSize != 50 {
		t.Errorf("max batch size = %d, want 50", server.MaxBatchSize)
	}
	if server.MaxConcurrent != 10 {
		t.Errorf("max concurrent = %d, want 10", server.MaxConcurrent)
	}

	classifier := cfg.GetClassifier()
	if classifier.Threshold != 0.6 {
		t.Errorf("threshold = %v, want 0.6", classifier.Threshold)
	}
	total := classifier.BusinessWeight + classifier.UrgencyWeight +
		classifier.ActionWeight + classifier.SentimentWeight
	if total != 1.0 {
		t.Errorf("default weights sum to %v, want 1.0", total)
	}

	llm := cfg.GetLLM()
	if llm.Enabled {
		t.Error("external LLM should default to disabled")
	}
	if llm.Provider != "openai" {
		t.Errorf("provider = %q, want openai", llm.Provider)
	}
	if llm.Timeout != 8*time.Second {
		t.Errorf("timeout = %v, want 8s", llm.Timeout)
	}

	limits := cfg.GetLimits()
	if limits.MinContentLength != 10 || limits.MaxContentLength != 50000 {
		t.Errorf("content limits = %d/%d", limits.MinContentLength, limits.MaxContentLength)
	}
	if len(limits.AllowedFileExtensions) != 2 {
		t.Errorf("allowed extensions = %v", limits.AllowedFileExtensions)
	}

	if !cfg.GetLocalModel().Enabled {
		t.Error("local model should default to enabled")
	}
	if cfg.GetBool("cache.enabled") {
		t.Error("cache should default to disabled")
	}
	if cfg.GetSMTP().Enabled {
		t.Error("SMTP ingest should default to disabled")
	}
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("classifier.threshold", 0.75)
	v.Set("smtp.enabled", true)
	v.Set("smtp.headers.category", "X-Custom-Category")
	cfg := NewFromViper(v)

	if got := cfg.GetClassifier().Threshold; got != 0.75 {
		t.Errorf("threshold = %v, want 0.75", got)
	}

	smtp := cfg.GetSMTP()
	if !smtp.Enabled {
		t.Error("smtp.enabled override lost")
	}
	if smtp.CategoryHeader != "X-Custom-Category" {
		t.Errorf("category header = %q", smtp.CategoryHeader)
	}
}

func TestGetDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.ttl", "90m")
	cfg := NewFromViper(v)

	ttl, err := cfg.GetDuration("cache.ttl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ttl != 90*time.Minute {
		t.Errorf("ttl = %v, want 90m", ttl)
	}

	v.Set("cache.ttl", "not-a-duration")
	if _, err := cfg.GetDuration("cache.ttl"); err == nil {
		t.Error("expected error for malformed duration")
	}
}
