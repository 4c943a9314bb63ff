// Package handlers implements the HTTP and WebSocket handlers for the
// search surface: single-corpus search, global search, document ingest,
// and live search-as-you-type.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/solheim-labs/sitesearch/pkg/registry"
)

// Handlers holds the registry instance and provides HTTP handlers.
type Handlers struct {
	reg *registry.Registry
}

// New creates a new Handlers instance over reg.
func New(reg *registry.Registry) *Handlers {
	return &Handlers{reg: reg}
}

func parseJSONBody(r *http.Request, target interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return &BadRequestError{Message: "failed to read request body"}
	}
	defer r.Body.Close()

	if len(body) == 0 {
		return &BadRequestError{Message: "request body is empty"}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return &BadRequestError{Message: "invalid JSON: " + err.Error()}
	}

	return nil
}

// Error types for consistent error handling

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

type CorpusNotFoundError struct {
	Corpus string
}

func (e *CorpusNotFoundError) Error() string {
	return "corpus not found: " + e.Corpus
}

type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return e.Message
}

func writeError(w http.ResponseWriter, err error) {
	var statusCode int
	var errorType string
	var message string

	switch e := err.(type) {
	case *BadRequestError:
		statusCode = http.StatusBadRequest
		errorType = "BadRequest"
		message = e.Message
	case *CorpusNotFoundError:
		statusCode = http.StatusNotFound
		errorType = "CorpusNotFound"
		message = e.Error()
	case *InternalError:
		statusCode = http.StatusInternalServerError
		errorType = "InternalError"
		message = e.Message
	default:
		statusCode = http.StatusInternalServerError
		errorType = "InternalError"
		message = err.Error()
	}

	response := map[string]interface{}{
		"ok":      false,
		"error":   errorType,
		"message": message,
		"code":    statusCode,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func writeSuccess(w http.ResponseWriter, result interface{}) {
	response := map[string]interface{}{
		"ok":     true,
		"result": result,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func writeSuccessWithCount(w http.ResponseWriter, result interface{}, count int) {
	response := map[string]interface{}{
		"ok":     true,
		"result": result,
		"count":  count,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
