package core

import (
	"sync"
	"time"
)

// MetricsSnapshot is the point-in-time view of the processing counters
type MetricsSnapshot struct {
	TotalProcessed        int64      `json:"total_processed"`
	ProductiveCount       int64      `json:"productive_count"`
	UnproductiveCount     int64      `json:"unproductive_count"`
	AverageProcessingTime float64    `json:"average_processing_time"`
	AverageConfidence     float64    `json:"average_confidence"`
	LastProcessed         *time.Time `json:"last_processed,omitempty"`
}

// MetricsAggregator owns the process-wide classification counters. All
// mutation happens under one mutex, a single Record call per
// classification, so concurrent requests cannot lose updates.
type MetricsAggregator struct {
	mu                sync.Mutex
	totalProcessed    int64
	productiveCount   int64
	unproductiveCount int64
	cumProcessingTime float64
	cumConfidence     float64
	lastProcessed     time.Time
}

// NewMetricsAggregator creates a zeroed aggregator
func NewMetricsAggregator() *MetricsAggregator {
	return &MetricsAggregator{}
}

// Record applies one classification outcome to the counters
func (m *MetricsAggregator) Record(result *ClassificationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalProcessed++
	if result.Category == CategoryProductive {
		m.productiveCount++
	} else {
		m.unproductiveCount++
	}
	m.cumProcessingTime += result.ProcessingTime
	m.cumConfidence += result.Confidence
	m.lastProcessed = result.Timestamp
}

// Snapshot returns the current counters and running averages
func (m *MetricsAggregator) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		TotalProcessed:    m.totalProcessed,
		ProductiveCount:   m.productiveCount,
		UnproductiveCount: m.unproductiveCount,
	}
	if m.totalProcessed > 0 {
		snap.AverageProcessingTime = m.cumProcessingTime / float64(m.totalProcessed)
		snap.AverageConfidence = m.cumConfidence / float64(m.totalProcessed)
		last := m.lastProcessed
		snap.LastProcessed = &last
	}
	return snap
}

// Reset zeroes all counters
func (m *MetricsAggregator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalProcessed = 0
	m.productiveCount = 0
	m.unproductiveCount = 0
	m.cumProcessingTime = 0
	m.cumConfidence = 0
	m.lastProcessed = time.Time{}
}
