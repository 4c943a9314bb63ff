package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solheim-labs/sitesearch/pkg/search"
)

func setupTestServer(t *testing.T) *Server {
	config := DefaultConfig()
	config.Port = 0
	config.EnableLogging = false

	srv, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return srv
}

func makeRequest(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	var response map[string]interface{}
	json.NewDecoder(rr.Body).Decode(&response)

	return rr, response
}

func TestHealthEndpoint(t *testing.T) {
	srv := setupTestServer(t)

	rr, resp := makeRequest(t, srv, "GET", "/_health", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	if ok, exists := resp["ok"].(bool); !exists || !ok {
		t.Errorf("Expected ok=true, got %v", resp["ok"])
	}

	result := resp["result"].(map[string]interface{})
	if status := result["status"]; status != "ok" {
		t.Errorf("Expected status=ok, got %v", status)
	}
}

func TestSearchEndpointEndToEnd(t *testing.T) {
	srv := setupTestServer(t)

	srv.Registry().Add("courses", "c1", "Rust Programming", "learn rust systems programming", nil)

	rr, resp := makeRequest(t, srv, "POST", "/search/courses", map[string]interface{}{
		"query": "rust programming",
		"limit": 5,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", rr.Code, resp)
	}

	result := resp["result"].(map[string]interface{})
	if int(result["total"].(float64)) != 1 {
		t.Errorf("Expected total=1, got %v", result["total"])
	}
}

func TestGlobalSearchEndpoint(t *testing.T) {
	srv := setupTestServer(t)

	srv.Registry().Add("courses", "c1", "Rust Course", "rust programming fundamentals", nil)
	srv.Registry().Add("blog", "b1", "Rust Release", "rust programming release notes", nil)

	rr, resp := makeRequest(t, srv, "POST", "/search", map[string]interface{}{
		"query": "rust programming",
		"limit": 10,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", rr.Code, resp)
	}

	result := resp["result"].(map[string]interface{})
	if int(result["total"].(float64)) != 2 {
		t.Errorf("Expected total=2, got %v", result["total"])
	}
}

func TestIngestEndpoint(t *testing.T) {
	srv := setupTestServer(t)

	rr, resp := makeRequest(t, srv, "POST", "/corpora/portfolio/documents", map[string]interface{}{
		"id":      "p1",
		"title":   "DEX Project",
		"content": "a decentralized exchange built on solana",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", rr.Code, resp)
	}

	if srv.Registry().Corpus("portfolio").DocumentCount() != 1 {
		t.Errorf("Expected 1 document indexed")
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := setupTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/_health", nil)
	rr := httptest.NewRecorder()

	srv.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 for OPTIONS, got %d", rr.Code)
	}

	if origin := rr.Header().Get("Access-Control-Allow-Origin"); origin == "" {
		t.Error("Expected Access-Control-Allow-Origin header")
	}
}

func TestBadJSONRequest(t *testing.T) {
	srv := setupTestServer(t)

	req := httptest.NewRequest("POST", "/search/courses", bytes.NewBufferString("{invalid json}"))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad JSON, got %d", rr.Code)
	}

	var resp map[string]interface{}
	json.NewDecoder(rr.Body).Decode(&resp)

	if errorType := resp["error"]; errorType != "BadRequest" {
		t.Errorf("Expected error=BadRequest, got %v", errorType)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	srv := setupTestServer(t)

	largeData := make([]byte, 11*1024*1024)
	for i := range largeData {
		largeData[i] = 'a'
	}

	doc := map[string]interface{}{"id": "big", "title": "t", "content": string(largeData)}
	jsonData, _ := json.Marshal(doc)
	req := httptest.NewRequest("POST", "/corpora/portfolio/documents", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	if rr.Code == http.StatusOK {
		t.Error("Expected request to fail due to size limit")
	}
}

func TestPrometheusMetricsEndpoint(t *testing.T) {
	srv := setupTestServer(t)

	srv.Registry().Add("courses", "c1", "Rust", "rust programming", nil)
	srv.Registry().Search("courses", search.SearchOptions{Query: "rust", Limit: 5}, nil)

	req := httptest.NewRequest("GET", "/_metrics", nil)
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	contentType := rr.Header().Get("Content-Type")
	if contentType != "text/plain; version=0.0.4; charset=utf-8" {
		t.Errorf("Expected Prometheus content type, got %s", contentType)
	}

	body := rr.Body.String()
	if !bytes.Contains([]byte(body), []byte("sitesearch_queries_total 1")) {
		t.Error("Expected queries_total to be 1")
	}
}

func TestDefaultConfigValues(t *testing.T) {
	config := DefaultConfig()

	if config.Host != "localhost" {
		t.Errorf("Expected host=localhost, got %s", config.Host)
	}
	if config.Port != 8080 {
		t.Errorf("Expected port=8080, got %d", config.Port)
	}
	if config.ReadTimeout != 30*time.Second {
		t.Errorf("Expected read timeout=30s, got %v", config.ReadTimeout)
	}
	if !config.EnableCORS {
		t.Error("Expected CORS to be enabled by default")
	}
	if !config.EnableCache {
		t.Error("Expected cache to be enabled by default")
	}
	if config.CacheSize != 1000 {
		t.Errorf("Expected cache size=1000, got %d", config.CacheSize)
	}
}

func TestGetMetricsCollector(t *testing.T) {
	srv := setupTestServer(t)

	collector := srv.GetMetricsCollector()
	if collector == nil {
		t.Error("Expected GetMetricsCollector to return non-nil collector")
	}
}

func TestGetResourceTracker(t *testing.T) {
	srv := setupTestServer(t)

	tracker := srv.GetResourceTracker()
	if tracker == nil {
		t.Error("Expected GetResourceTracker to return non-nil tracker")
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteJSON(rr, http.StatusOK, map[string]interface{}{"key": "value"})

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if contentType := rr.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected Content-Type=application/json, got %s", contentType)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(rr, http.StatusBadRequest, "TestError", "This is a test error")

	var result map[string]interface{}
	json.NewDecoder(rr.Body).Decode(&result)

	if result["error"] != "TestError" {
		t.Errorf("Expected error=TestError, got %v", result["error"])
	}
}

func TestWriteSuccess(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteSuccess(rr, map[string]interface{}{"id": "123"})

	var result map[string]interface{}
	json.NewDecoder(rr.Body).Decode(&result)

	if ok, exists := result["ok"].(bool); !exists || !ok {
		t.Error("Expected ok=true")
	}
}

func TestShutdown(t *testing.T) {
	srv := setupTestServer(t)

	if err := srv.Shutdown(); err != nil {
		t.Errorf("Expected Shutdown to succeed, got error: %v", err)
	}
}
