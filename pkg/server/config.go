package server

import "time"

// Config holds server configuration settings
type Config struct {
	Host           string        // Server host address
	Port           int           // Server port
	ReadTimeout    time.Duration // HTTP read timeout
	WriteTimeout   time.Duration // HTTP write timeout
	IdleTimeout    time.Duration // HTTP idle timeout
	MaxRequestSize int64         // Maximum request body size in bytes
	EnableCORS     bool          // Enable CORS middleware
	AllowedOrigins []string      // CORS allowed origins
	AllowedMethods []string      // CORS allowed methods
	AllowedHeaders []string      // CORS allowed headers
	EnableLogging  bool          // Enable request logging
	LogFormat      string        // Log format (text or json)

	// TLS/SSL configuration
	EnableTLS   bool   // Enable TLS/SSL
	TLSCertFile string // Path to TLS certificate file
	TLSKeyFile  string // Path to TLS private key file

	// Feature flags
	EnableGraphQL     bool // Enable GraphQL API endpoint
	EnableWebSocket   bool // Enable live search-as-you-type endpoint
	EnableCompression bool // Gzip-encode responses over CompressionThreshold

	// CompressionThreshold is the minimum response size, in bytes, before
	// gzip encoding kicks in. Only consulted when EnableCompression is set.
	CompressionThreshold int

	// Query result cache
	EnableCache bool          // Enable the search-result cache
	CacheSize   int           // Max cached query results
	CacheTTL    time.Duration // Cache entry lifetime

	// Profiling & metrics
	EnableProfiling  bool   // Record per-stage query timings
	MetricsNamespace string // Prometheus metric name prefix

	// SlowQueryThreshold logs any search whose wall-clock time exceeds it.
	// Zero disables slow-query logging.
	SlowQueryThreshold time.Duration
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:                 "localhost",
		Port:                 8080,
		ReadTimeout:          30 * time.Second,
		WriteTimeout:         30 * time.Second,
		IdleTimeout:          120 * time.Second,
		MaxRequestSize:       10 * 1024 * 1024, // 10MB
		EnableCORS:           true,
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:       []string{"Content-Type", "Authorization", "X-Request-ID"},
		EnableLogging:        true,
		LogFormat:            "text",
		EnableTLS:            false,
		TLSCertFile:          "",
		TLSKeyFile:           "",
		EnableGraphQL:        false,
		EnableWebSocket:      false,
		EnableCompression:    true,
		CompressionThreshold: 1024,
		EnableCache:          true,
		CacheSize:            1000,
		CacheTTL:             5 * time.Minute,
		EnableProfiling:      false,
		MetricsNamespace:     "sitesearch",
		SlowQueryThreshold:   200 * time.Millisecond,
	}
}
