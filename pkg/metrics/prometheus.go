package metrics

import (
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"
)

// PrometheusExporter exports metrics in Prometheus text format
type PrometheusExporter struct {
	collector        *MetricsCollector
	resourceTracker  *ResourceTracker
	namespace        string // Metric namespace prefix (e.g., "laura_db")
}

// NewPrometheusExporter creates a new Prometheus exporter
func NewPrometheusExporter(collector *MetricsCollector, resourceTracker *ResourceTracker) *PrometheusExporter {
	return &PrometheusExporter{
		collector:       collector,
		resourceTracker: resourceTracker,
		namespace:       "sitesearch",
	}
}

// SetNamespace sets the metric namespace prefix
func (pe *PrometheusExporter) SetNamespace(namespace string) {
	pe.namespace = namespace
}

// WriteMetrics writes all metrics in Prometheus text format to the writer
// Format: https://prometheus.io/docs/instrumenting/exposition_formats/
func (pe *PrometheusExporter) WriteMetrics(w io.Writer) error {
	// Write uptime metric
	uptime := time.Since(pe.collector.startTime).Seconds()
	if err := pe.writeGauge(w, "uptime_seconds", "Database uptime in seconds", uptime); err != nil {
		return err
	}

	// Query metrics
	queriesExecuted := atomic.LoadUint64(&pe.collector.queriesExecuted)
	queriesFailed := atomic.LoadUint64(&pe.collector.queriesFailed)
	totalQueryTime := atomic.LoadUint64(&pe.collector.totalQueryTime)
	fuzzyFallbacks := atomic.LoadUint64(&pe.collector.fuzzyFallbacks)

	if err := pe.writeCounter(w, "queries_total", "Total number of searches executed", queriesExecuted); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "queries_failed_total", "Total number of failed searches", queriesFailed); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "query_duration_nanoseconds_total", "Total query execution time in nanoseconds", totalQueryTime); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "query_fuzzy_fallbacks_total", "Total number of queries that fell back to fuzzy matching", fuzzyFallbacks); err != nil {
		return err
	}

	// Query timing histogram
	if err := pe.writeHistogram(w, "query_duration_seconds", "Query execution duration histogram", pe.collector.queryTimings); err != nil {
		return err
	}

	// Query percentiles
	if err := pe.writePercentiles(w, "query_duration_seconds", pe.collector.queryTimings); err != nil {
		return err
	}

	// Add (ingest) metrics
	addsExecuted := atomic.LoadUint64(&pe.collector.addsExecuted)
	addsFailed := atomic.LoadUint64(&pe.collector.addsFailed)
	totalAddTime := atomic.LoadUint64(&pe.collector.totalAddTime)

	if err := pe.writeCounter(w, "adds_total", "Total number of document ingests", addsExecuted); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "adds_failed_total", "Total number of failed document ingests", addsFailed); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "add_duration_nanoseconds_total", "Total ingest execution time in nanoseconds", totalAddTime); err != nil {
		return err
	}

	// Add timing histogram
	if err := pe.writeHistogram(w, "add_duration_seconds", "Document ingest duration histogram", pe.collector.addTimings); err != nil {
		return err
	}

	// Add percentiles
	if err := pe.writePercentiles(w, "add_duration_seconds", pe.collector.addTimings); err != nil {
		return err
	}

	// Cache metrics
	cacheHits := atomic.LoadUint64(&pe.collector.cacheHits)
	cacheMisses := atomic.LoadUint64(&pe.collector.cacheMisses)
	totalCacheOps := cacheHits + cacheMisses
	var cacheHitRate float64
	if totalCacheOps > 0 {
		cacheHitRate = float64(cacheHits) / float64(totalCacheOps)
	}

	if err := pe.writeCounter(w, "cache_hits_total", "Total number of cache hits", cacheHits); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "cache_misses_total", "Total number of cache misses", cacheMisses); err != nil {
		return err
	}
	if err := pe.writeGauge(w, "cache_hit_rate", "Cache hit rate (0-1)", cacheHitRate); err != nil {
		return err
	}

	// Connection metrics
	activeConnections := atomic.LoadUint64(&pe.collector.activeConnections)
	totalConnections := atomic.LoadUint64(&pe.collector.totalConnections)

	if err := pe.writeGauge(w, "active_connections", "Current number of active connections", float64(activeConnections)); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "connections_total", "Total number of connections", totalConnections); err != nil {
		return err
	}

	// Resource tracker metrics (if available)
	if pe.resourceTracker != nil {
		stats := pe.resourceTracker.GetStats()

		// Memory metrics
		if err := pe.writeGauge(w, "memory_heap_bytes", "Heap memory in bytes", float64(stats.HeapInUse)); err != nil {
			return err
		}
		if err := pe.writeGauge(w, "memory_stack_bytes", "Stack memory in bytes", float64(stats.StackInUse)); err != nil {
			return err
		}
		if err := pe.writeCounter(w, "memory_allocations_total", "Total memory allocations", stats.AllocBytes); err != nil {
			return err
		}
		if err := pe.writeGauge(w, "memory_objects", "Number of allocated objects", float64(stats.AllocObjects)); err != nil {
			return err
		}

		// Goroutine metrics
		if err := pe.writeGauge(w, "goroutines", "Number of goroutines", float64(stats.NumGoroutines)); err != nil {
			return err
		}

		// I/O metrics
		if err := pe.writeCounter(w, "io_bytes_read_total", "Total bytes read", stats.BytesRead); err != nil {
			return err
		}
		if err := pe.writeCounter(w, "io_bytes_written_total", "Total bytes written", stats.BytesWritten); err != nil {
			return err
		}
		if err := pe.writeCounter(w, "io_read_operations_total", "Total read operations", stats.ReadsCompleted); err != nil {
			return err
		}
		if err := pe.writeCounter(w, "io_write_operations_total", "Total write operations", stats.WritesCompleted); err != nil {
			return err
		}

		// GC metrics
		if err := pe.writeCounter(w, "gc_runs_total", "Total garbage collection runs", uint64(stats.GCRuns)); err != nil {
			return err
		}
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		var lastPauseNs uint64
		if ms.NumGC > 0 {
			lastPauseNs = ms.PauseNs[(ms.NumGC+255)%256]
		}
		if err := pe.writeGauge(w, "gc_pause_nanoseconds", "Last GC pause time in nanoseconds", float64(lastPauseNs)); err != nil {
			return err
		}

		// System info
		if err := pe.writeGauge(w, "cpu_count", "Number of CPUs", float64(stats.NumCPU)); err != nil {
			return err
		}
	}

	return nil
}

// writeCounter writes a counter metric
func (pe *PrometheusExporter) writeCounter(w io.Writer, name, help string, value uint64) error {
	metricName := pe.namespace + "_" + name
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n",
		metricName, help, metricName, metricName, value)
	return err
}

// writeGauge writes a gauge metric
func (pe *PrometheusExporter) writeGauge(w io.Writer, name, help string, value float64) error {
	metricName := pe.namespace + "_" + name
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %g\n",
		metricName, help, metricName, metricName, value)
	return err
}

// writeHistogram writes histogram metrics from timing data
func (pe *PrometheusExporter) writeHistogram(w io.Writer, name, help string, th *TimingHistogram) error {
	metricName := pe.namespace + "_" + name

	// Write HELP and TYPE
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", metricName, help, metricName); err != nil {
		return err
	}

	// Get bucket counts
	buckets := th.GetBuckets()

	// Convert to cumulative counts and write buckets
	// Prometheus histogram buckets are cumulative
	var cumulative uint64

	// 0-1ms bucket (le="0.001")
	cumulative += buckets["0-1ms"]
	if _, err := fmt.Fprintf(w, "%s_bucket{le=\"0.001\"} %d\n", metricName, cumulative); err != nil {
		return err
	}

	// 1-10ms bucket (le="0.01")
	cumulative += buckets["1-10ms"]
	if _, err := fmt.Fprintf(w, "%s_bucket{le=\"0.01\"} %d\n", metricName, cumulative); err != nil {
		return err
	}

	// 10-100ms bucket (le="0.1")
	cumulative += buckets["10-100ms"]
	if _, err := fmt.Fprintf(w, "%s_bucket{le=\"0.1\"} %d\n", metricName, cumulative); err != nil {
		return err
	}

	// 100-1000ms bucket (le="1.0")
	cumulative += buckets["100-1000ms"]
	if _, err := fmt.Fprintf(w, "%s_bucket{le=\"1.0\"} %d\n", metricName, cumulative); err != nil {
		return err
	}

	// >1000ms bucket (le="+Inf")
	cumulative += buckets[">1000ms"]
	if _, err := fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", metricName, cumulative); err != nil {
		return err
	}

	// Write the observation count. No _sum series is written; Prometheus
	// can still calculate rates and percentiles from the buckets.
	if _, err := fmt.Fprintf(w, "%s_count %d\n", metricName, cumulative); err != nil {
		return err
	}

	return nil
}

// writePercentiles writes percentile metrics as gauges
func (pe *PrometheusExporter) writePercentiles(w io.Writer, baseName string, th *TimingHistogram) error {
	percentiles := th.GetPercentiles()

	// P50
	if err := pe.writeGauge(w, baseName+"_p50",
		fmt.Sprintf("50th percentile of %s", baseName),
		percentiles["p50"].Seconds()); err != nil {
		return err
	}

	// P95
	if err := pe.writeGauge(w, baseName+"_p95",
		fmt.Sprintf("95th percentile of %s", baseName),
		percentiles["p95"].Seconds()); err != nil {
		return err
	}

	// P99
	if err := pe.writeGauge(w, baseName+"_p99",
		fmt.Sprintf("99th percentile of %s", baseName),
		percentiles["p99"].Seconds()); err != nil {
		return err
	}

	return nil
}
