package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// upgrader holds the default WebSocket upgrade settings for live search.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveSearchConnection wraps one open search-as-you-type connection.
type LiveSearchConnection struct {
	id         string
	corpus     string
	conn       *websocket.Conn
	cancelFunc context.CancelFunc
	mu         sync.Mutex
}

func (c *LiveSearchConnection) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Close tears down the connection's background goroutines and socket.
func (c *LiveSearchConnection) Close() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.conn.Close()
}

// LiveSearchMessage is one inbound keystroke event from the client.
type LiveSearchMessage struct {
	Query         string            `json:"query"`
	Filters       map[string]string `json:"filters,omitempty"`
	Limit         int               `json:"limit,omitempty"`
	Fuzzy         bool              `json:"fuzzy,omitempty"`
	FuzzyDistance int               `json:"fuzzy_distance,omitempty"`
}

// LiveSearchResponse is one outbound frame: either a fresh result set, a
// heartbeat, or an error.
type LiveSearchResponse struct {
	Type    string            `json:"type"` // "results", "error", "heartbeat"
	Results []interface{}     `json:"results,omitempty"`
	Total   int               `json:"total,omitempty"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message,omitempty"`
}

// LiveSearch upgrades to a WebSocket and re-runs the search on every inbound
// message, streaming back the new result set as the caller types. The
// corpus is fixed for the lifetime of the connection, taken from the
// {corpus} route parameter.
func (h *Handlers) LiveSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		corpus := chi.URLParam(r, "corpus")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("live search: failed to upgrade connection: %v", err)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		wsConn := &LiveSearchConnection{
			id:         fmt.Sprintf("live-%d", time.Now().UnixNano()),
			corpus:     corpus,
			conn:       conn,
			cancelFunc: cancel,
		}
		defer wsConn.Close()

		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-heartbeat.C:
					if err := wsConn.writeJSON(LiveSearchResponse{Type: "heartbeat", Message: "keepalive"}); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		for {
			var msg LiveSearchMessage
			if err := conn.ReadJSON(&msg); err != nil {
				cancel()
				return
			}

			if msg.Query == "" {
				wsConn.writeJSON(LiveSearchResponse{Type: "results", Results: []interface{}{}, Total: 0})
				continue
			}

			req := SearchRequest{
				Query:         msg.Query,
				Filters:       msg.Filters,
				Limit:         msg.Limit,
				Fuzzy:         msg.Fuzzy,
				FuzzyDistance: msg.FuzzyDistance,
			}
			results := h.reg.Search(wsConn.corpus, req.toOptions(), req.Filters)

			out := make([]interface{}, len(results))
			for i, res := range results {
				out[i] = res
			}

			if err := wsConn.writeJSON(LiveSearchResponse{Type: "results", Results: out, Total: len(out)}); err != nil {
				log.Printf("live search: failed to send results: %v", err)
				return
			}
		}
	}
}
