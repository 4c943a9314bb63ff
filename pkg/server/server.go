package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/solheim-labs/sitesearch/pkg/cache"
	gql "github.com/solheim-labs/sitesearch/pkg/graphql"
	"github.com/solheim-labs/sitesearch/pkg/metrics"
	"github.com/solheim-labs/sitesearch/pkg/registry"
	"github.com/solheim-labs/sitesearch/pkg/server/handlers"
)

// Server is the HTTP/WebSocket/GraphQL front end over a search registry.
type Server struct {
	config           *Config
	reg              *registry.Registry
	router           *chi.Mux
	httpSrv          *http.Server
	startTime        time.Time
	metricsCollector *metrics.MetricsCollector
	resourceTracker  *metrics.ResourceTracker
	promExporter     *metrics.PrometheusExporter
}

// New creates a server instance backed by a fresh, empty registry
// configured per config.
func New(config *Config) (*Server, error) {
	if config.EnableTLS {
		if config.TLSCertFile == "" || config.TLSKeyFile == "" {
			return nil, fmt.Errorf("TLS enabled but certificate or key file not specified")
		}
		if _, err := os.Stat(config.TLSCertFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS certificate file not found: %s", config.TLSCertFile)
		}
		if _, err := os.Stat(config.TLSKeyFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS key file not found: %s", config.TLSKeyFile)
		}
	}

	metricsCollector := metrics.NewMetricsCollector()
	resourceTracker := metrics.NewResourceTracker(nil)
	promExporter := metrics.NewPrometheusExporter(metricsCollector, resourceTracker)
	promExporter.SetNamespace(config.MetricsNamespace)

	var opts []registry.Option
	opts = append(opts, registry.WithMetrics(metricsCollector))

	if config.EnableCache {
		opts = append(opts, registry.WithCache(cache.NewLRUCache(config.CacheSize, config.CacheTTL)))
	}
	if config.EnableProfiling {
		opts = append(opts, registry.WithProfiling())
	}
	if config.SlowQueryThreshold > 0 {
		slowLog, err := metrics.NewSlowQueryLog(&metrics.SlowQueryLogConfig{
			Threshold:  config.SlowQueryThreshold,
			MaxEntries: 1000,
			Enabled:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create slow query log: %w", err)
		}
		opts = append(opts, registry.WithSlowQueryLog(slowLog))
	}

	reg := registry.New(opts...)

	srv := &Server{
		config:           config,
		reg:              reg,
		router:           chi.NewRouter(),
		startTime:        time.Now(),
		metricsCollector: metricsCollector,
		resourceTracker:  resourceTracker,
		promExporter:     promExporter,
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	if config.EnableGraphQL {
		if err := srv.setupGraphQLRoutes(); err != nil {
			return nil, fmt.Errorf("failed to setup GraphQL routes: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return srv, nil
}

// setupMiddleware configures the HTTP middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	if s.config.EnableLogging {
		s.router.Use(middleware.Logger)
	}

	if s.config.EnableCORS {
		s.router.Use(s.corsMiddleware)
	}

	s.router.Use(s.requestSizeLimitMiddleware)

	if s.config.EnableCompression {
		gzipWrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(s.config.CompressionThreshold))
		if err != nil {
			gzipWrapper, _ = gzhttp.NewWrapper()
		}
		s.router.Use(func(next http.Handler) http.Handler { return gzipWrapper(next) })
	}

	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures the REST and WebSocket routes.
func (s *Server) setupRoutes() {
	h := handlers.New(s.reg)

	s.router.Get("/_health", s.jsonContentType(h.Health(s.startTime)))
	s.router.Get("/_metrics", s.handlePrometheusMetrics)
	s.router.Get("/corpora", s.jsonContentType(h.ListCorpora))

	s.router.Post("/search", s.jsonContentType(h.Search))

	s.router.Route("/search/{corpus}", func(r chi.Router) {
		r.Post("/", h.SearchCorpus)
		if s.config.EnableWebSocket {
			r.Get("/live", h.LiveSearch())
		}
	})

	s.router.Route("/corpora/{corpus}/documents", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))
		r.Post("/", h.AddDocument)
	})
}

// setupGraphQLRoutes mounts the GraphQL endpoint and GraphiQL playground.
func (s *Server) setupGraphQLRoutes() error {
	graphqlHandler, err := gql.NewHandler(s.reg)
	if err != nil {
		return fmt.Errorf("failed to create GraphQL handler: %w", err)
	}

	s.router.Post("/graphql", graphqlHandler.ServeHTTP)
	s.router.Get("/graphiql", gql.GraphiQLHandler())

	fmt.Println("GraphQL API enabled")
	fmt.Printf("  GraphQL endpoint: /graphql\n")
	fmt.Printf("  GraphiQL playground: /graphiql\n")

	return nil
}

// jsonContentType wraps a handler to set the JSON content type.
func (s *Server) jsonContentType(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next(w, r)
	}
}

// corsMiddleware handles CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.config.AllowedOrigins) > 0 {
			origin = s.config.AllowedOrigins[0]
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestSizeLimitMiddleware caps request body size.
func (s *Server) requestSizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
		next.ServeHTTP(w, r)
	})
}

// handlePrometheusMetrics serves the Prometheus metrics endpoint.
func (s *Server) handlePrometheusMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	if err := s.promExporter.WriteMetrics(w); err != nil {
		http.Error(w, fmt.Sprintf("Error writing metrics: %v", err), http.StatusInternalServerError)
		return
	}
}

// Start runs the HTTP server until it errors or receives a shutdown signal.
func (s *Server) Start() error {
	protocol := "http"
	if s.config.EnableTLS {
		protocol = "https"
		fmt.Printf("TLS/SSL enabled\n")
		fmt.Printf("Certificate: %s\n", s.config.TLSCertFile)
	}
	fmt.Printf("search server starting on %s://%s:%d\n", protocol, s.config.Host, s.config.Port)
	fmt.Printf("corpora: %v\n", s.reg.Names())

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.config.EnableTLS {
			err = s.httpSrv.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			err = s.httpSrv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		fmt.Printf("\nreceived signal: %v\n", sig)
		return s.Shutdown()
	}
}

// Registry returns the underlying search registry.
func (s *Server) Registry() *registry.Registry {
	return s.reg
}

// GetMetricsCollector returns the metrics collector.
func (s *Server) GetMetricsCollector() *metrics.MetricsCollector {
	return s.metricsCollector
}

// GetResourceTracker returns the resource tracker.
func (s *Server) GetResourceTracker() *metrics.ResourceTracker {
	return s.resourceTracker
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	fmt.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		fmt.Printf("server shutdown error: %v\n", err)
	}

	if s.resourceTracker != nil {
		s.resourceTracker.Disable()
	}

	fmt.Println("server shutdown complete")
	return nil
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, statusCode int, errorType, message string) {
	response := map[string]interface{}{
		"ok":      false,
		"error":   errorType,
		"message": message,
		"code":    statusCode,
	}
	WriteJSON(w, statusCode, response)
}

// WriteSuccess writes a success response.
func WriteSuccess(w http.ResponseWriter, result interface{}) {
	response := map[string]interface{}{
		"ok":     true,
		"result": result,
	}
	WriteJSON(w, http.StatusOK, response)
}

// WriteSuccessWithCount writes a success response with a count.
func WriteSuccessWithCount(w http.ResponseWriter, result interface{}, count int) {
	response := map[string]interface{}{
		"ok":     true,
		"result": result,
		"count":  count,
	}
	WriteJSON(w, http.StatusOK, response)
}
