package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects real-time performance metrics for the search
// service.
type MetricsCollector struct {
	// Query metrics
	queriesExecuted uint64
	queriesFailed   uint64
	totalQueryTime  uint64 // in nanoseconds
	fuzzyFallbacks  uint64

	// Add (ingest) metrics
	addsExecuted  uint64
	addsFailed    uint64
	totalAddTime  uint64 // in nanoseconds

	// Cache metrics
	cacheHits   uint64
	cacheMisses uint64

	// Connection metrics (for HTTP server)
	activeConnections uint64
	totalConnections  uint64

	// Operation timing buckets (histogram)
	mu           sync.RWMutex
	queryTimings *TimingHistogram
	addTimings   *TimingHistogram

	// Start time for uptime calculation
	startTime time.Time
}

// TimingHistogram stores timing data in buckets for histogram generation
type TimingHistogram struct {
	// Buckets: <1ms, 1-10ms, 10-100ms, 100ms-1s, >1s
	bucket0_1ms      uint64 // 0-1ms
	bucket1_10ms     uint64 // 1-10ms
	bucket10_100ms   uint64 // 10-100ms
	bucket100_1000ms uint64 // 100-1000ms
	bucket1000ms     uint64 // >1s

	// P50, P95, P99 tracking
	mu               sync.Mutex
	recentTimings    []time.Duration // Keep last 1000 timings
	maxRecentTimings int
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		queryTimings: NewTimingHistogram(1000),
		addTimings:   NewTimingHistogram(1000),
		startTime:    time.Now(),
	}
}

// NewTimingHistogram creates a new timing histogram
func NewTimingHistogram(maxRecent int) *TimingHistogram {
	return &TimingHistogram{
		recentTimings:    make([]time.Duration, 0, maxRecent),
		maxRecentTimings: maxRecent,
	}
}

// RecordQuery records a search execution
func (mc *MetricsCollector) RecordQuery(duration time.Duration, success bool) {
	atomic.AddUint64(&mc.queriesExecuted, 1)
	if !success {
		atomic.AddUint64(&mc.queriesFailed, 1)
	}
	atomic.AddUint64(&mc.totalQueryTime, uint64(duration.Nanoseconds()))
	mc.queryTimings.Record(duration)
}

// RecordFuzzyFallback records one query that fell back to fuzzy matching
// because its exact cosine score was zero.
func (mc *MetricsCollector) RecordFuzzyFallback() {
	atomic.AddUint64(&mc.fuzzyFallbacks, 1)
}

// RecordAdd records a document ingest operation
func (mc *MetricsCollector) RecordAdd(duration time.Duration, success bool) {
	atomic.AddUint64(&mc.addsExecuted, 1)
	if !success {
		atomic.AddUint64(&mc.addsFailed, 1)
	}
	atomic.AddUint64(&mc.totalAddTime, uint64(duration.Nanoseconds()))
	mc.addTimings.Record(duration)
}

// RecordCacheHit records a cache hit
func (mc *MetricsCollector) RecordCacheHit() {
	atomic.AddUint64(&mc.cacheHits, 1)
}

// RecordCacheMiss records a cache miss
func (mc *MetricsCollector) RecordCacheMiss() {
	atomic.AddUint64(&mc.cacheMisses, 1)
}

// RecordConnectionStart records a new HTTP connection
func (mc *MetricsCollector) RecordConnectionStart() {
	atomic.AddUint64(&mc.totalConnections, 1)
	atomic.AddUint64(&mc.activeConnections, 1)
}

// RecordConnectionEnd records an HTTP connection closing
func (mc *MetricsCollector) RecordConnectionEnd() {
	atomic.AddUint64(&mc.activeConnections, ^uint64(0)) // Decrement using two's complement
}

// Record adds a timing to the histogram
func (th *TimingHistogram) Record(duration time.Duration) {
	// Update buckets atomically
	ms := duration.Milliseconds()
	if ms < 1 {
		atomic.AddUint64(&th.bucket0_1ms, 1)
	} else if ms < 10 {
		atomic.AddUint64(&th.bucket1_10ms, 1)
	} else if ms < 100 {
		atomic.AddUint64(&th.bucket10_100ms, 1)
	} else if ms < 1000 {
		atomic.AddUint64(&th.bucket100_1000ms, 1)
	} else {
		atomic.AddUint64(&th.bucket1000ms, 1)
	}

	// Add to recent timings for percentile calculation
	th.mu.Lock()
	defer th.mu.Unlock()

	if len(th.recentTimings) >= th.maxRecentTimings {
		// Shift array to remove oldest
		th.recentTimings = th.recentTimings[1:]
	}
	th.recentTimings = append(th.recentTimings, duration)
}

// GetBuckets returns the histogram bucket counts
func (th *TimingHistogram) GetBuckets() map[string]uint64 {
	return map[string]uint64{
		"0-1ms":      atomic.LoadUint64(&th.bucket0_1ms),
		"1-10ms":     atomic.LoadUint64(&th.bucket1_10ms),
		"10-100ms":   atomic.LoadUint64(&th.bucket10_100ms),
		"100-1000ms": atomic.LoadUint64(&th.bucket100_1000ms),
		">1000ms":    atomic.LoadUint64(&th.bucket1000ms),
	}
}

// GetPercentiles calculates P50, P95, P99 from recent timings
func (th *TimingHistogram) GetPercentiles() map[string]time.Duration {
	th.mu.Lock()
	defer th.mu.Unlock()

	if len(th.recentTimings) == 0 {
		return map[string]time.Duration{
			"p50": 0,
			"p95": 0,
			"p99": 0,
		}
	}

	// Create sorted copy
	sorted := make([]time.Duration, len(th.recentTimings))
	copy(sorted, th.recentTimings)

	// Simple insertion sort (fine for 1000 elements)
	for i := 1; i < len(sorted); i++ {
		key := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j] > key {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = key
	}

	// Calculate percentiles
	p50idx := len(sorted) * 50 / 100
	p95idx := len(sorted) * 95 / 100
	p99idx := len(sorted) * 99 / 100

	return map[string]time.Duration{
		"p50": sorted[p50idx],
		"p95": sorted[p95idx],
		"p99": sorted[p99idx],
	}
}

// GetMetrics returns a snapshot of all metrics
func (mc *MetricsCollector) GetMetrics() map[string]interface{} {
	// Load all atomic counters
	queriesExecuted := atomic.LoadUint64(&mc.queriesExecuted)
	queriesFailed := atomic.LoadUint64(&mc.queriesFailed)
	totalQueryTime := atomic.LoadUint64(&mc.totalQueryTime)
	fuzzyFallbacks := atomic.LoadUint64(&mc.fuzzyFallbacks)

	addsExecuted := atomic.LoadUint64(&mc.addsExecuted)
	addsFailed := atomic.LoadUint64(&mc.addsFailed)
	totalAddTime := atomic.LoadUint64(&mc.totalAddTime)

	cacheHits := atomic.LoadUint64(&mc.cacheHits)
	cacheMisses := atomic.LoadUint64(&mc.cacheMisses)

	activeConnections := atomic.LoadUint64(&mc.activeConnections)
	totalConnections := atomic.LoadUint64(&mc.totalConnections)

	// Calculate averages (prevent division by zero)
	var avgQueryTime, avgAddTime float64
	if queriesExecuted > 0 {
		avgQueryTime = float64(totalQueryTime) / float64(queriesExecuted) / 1e6 // Convert to ms
	}
	if addsExecuted > 0 {
		avgAddTime = float64(totalAddTime) / float64(addsExecuted) / 1e6
	}

	// Calculate cache hit rate
	var cacheHitRate float64
	totalCacheOps := cacheHits + cacheMisses
	if totalCacheOps > 0 {
		cacheHitRate = float64(cacheHits) / float64(totalCacheOps) * 100
	}

	// Calculate uptime
	uptime := time.Since(mc.startTime)

	return map[string]interface{}{
		"uptime_seconds": uptime.Seconds(),

		"queries": map[string]interface{}{
			"total":              queriesExecuted,
			"failed":             queriesFailed,
			"success_rate":       calculateSuccessRate(queriesExecuted, queriesFailed),
			"avg_duration_ms":    avgQueryTime,
			"fuzzy_fallbacks":    fuzzyFallbacks,
			"timing_histogram":   mc.queryTimings.GetBuckets(),
			"timing_percentiles": mc.queryTimings.GetPercentiles(),
		},

		"adds": map[string]interface{}{
			"total":              addsExecuted,
			"failed":             addsFailed,
			"success_rate":       calculateSuccessRate(addsExecuted, addsFailed),
			"avg_duration_ms":    avgAddTime,
			"timing_histogram":   mc.addTimings.GetBuckets(),
			"timing_percentiles": mc.addTimings.GetPercentiles(),
		},

		"cache": map[string]interface{}{
			"hits":     cacheHits,
			"misses":   cacheMisses,
			"hit_rate": cacheHitRate,
		},

		"connections": map[string]interface{}{
			"active": activeConnections,
			"total":  totalConnections,
		},
	}
}

// Reset resets all metrics to zero
func (mc *MetricsCollector) Reset() {
	atomic.StoreUint64(&mc.queriesExecuted, 0)
	atomic.StoreUint64(&mc.queriesFailed, 0)
	atomic.StoreUint64(&mc.totalQueryTime, 0)
	atomic.StoreUint64(&mc.fuzzyFallbacks, 0)

	atomic.StoreUint64(&mc.addsExecuted, 0)
	atomic.StoreUint64(&mc.addsFailed, 0)
	atomic.StoreUint64(&mc.totalAddTime, 0)

	atomic.StoreUint64(&mc.cacheHits, 0)
	atomic.StoreUint64(&mc.cacheMisses, 0)

	atomic.StoreUint64(&mc.totalConnections, 0)
	// Don't reset activeConnections as it represents current state

	// Reset histograms
	mc.mu.Lock()
	mc.queryTimings = NewTimingHistogram(1000)
	mc.addTimings = NewTimingHistogram(1000)
	mc.mu.Unlock()

	// Reset start time
	mc.startTime = time.Now()
}

// Helper functions

func calculateSuccessRate(total, failed uint64) float64 {
	if total == 0 {
		return 0
	}
	succeeded := total - failed
	return float64(succeeded) / float64(total) * 100
}
