package core

import (
	"math"
	"sync"
	"testing"
	"time"
)

func TestMetricsRecordAndSnapshot(t *testing.T) {
	m := NewMetricsAggregator()

	if snap := m.Snapshot(); snap.TotalProcessed != 0 || snap.LastProcessed != nil {
		t.Fatalf("fresh aggregator not zeroed: %+v", snap)
	}

	now := time.Now().UTC()
	m.Record(&ClassificationResult{Category: CategoryProductive, Confidence: 0.9, ProcessingTime: 0.2, Timestamp: now})
	m.Record(&ClassificationResult{Category: CategoryUnproductive, Confidence: 0.7, ProcessingTime: 0.4, Timestamp: now})

	snap := m.Snapshot()
	if snap.TotalProcessed != 2 {
		t.Errorf("total = %d, want 2", snap.TotalProcessed)
	}
	if snap.ProductiveCount != 1 || snap.UnproductiveCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", snap.ProductiveCount, snap.UnproductiveCount)
	}
	if math.Abs(snap.AverageConfidence-0.8) > 1e-9 {
		t.Errorf("average confidence = %v, want 0.8", snap.AverageConfidence)
	}
	if math.Abs(snap.AverageProcessingTime-0.3) > 1e-9 {
		t.Errorf("average processing time = %v, want 0.3", snap.AverageProcessingTime)
	}
	if snap.LastProcessed == nil || !snap.LastProcessed.Equal(now) {
		t.Errorf("last processed = %v, want %v", snap.LastProcessed, now)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetricsAggregator()
	m.Record(&ClassificationResult{Category: CategoryProductive, Confidence: 0.9})

	m.Reset()

	snap := m.Snapshot()
	if snap.TotalProcessed != 0 || snap.ProductiveCount != 0 || snap.AverageConfidence != 0 {
		t.Errorf("reset left counters: %+v", snap)
	}
	if snap.LastProcessed != nil {
		t.Errorf("reset left last processed: %v", snap.LastProcessed)
	}
}

func TestMetricsConcurrentRecord(t *testing.T) {
	m := NewMetricsAggregator()

	const workers = 20
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			category := CategoryProductive
			if i%2 == 1 {
				category = CategoryUnproductive
			}
			for j := 0; j < perWorker; j++ {
				m.Record(&ClassificationResult{Category: category, Confidence: 0.5, Timestamp: time.Now()})
			}
		}(i)
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.TotalProcessed != workers*perWorker {
		t.Errorf("total = %d, want %d", snap.TotalProcessed, workers*perWorker)
	}
	if snap.ProductiveCount != workers/2*perWorker {
		t.Errorf("productive = %d, want %d", snap.ProductiveCount, workers/2*perWorker)
	}
}
