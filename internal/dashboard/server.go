// Package dashboard serves the DailyFocus state over HTTP and pushes changes
// to browsers over WebSocket.
//
// JSON endpoints under /api expose the tracker's queries and commands. The
// /ws endpoint broadcasts a state_changed message after every committed
// mutation and an autoSyncComplete message after every automatic sync.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/coder/websocket"

	"github.com/dailyfocus/dailyfocus/internal/tracker"
)

// MessageType defines the type of dashboard message
type MessageType string

const (
	// MessageTypeStateChanged is sent after a committed mutation
	MessageTypeStateChanged MessageType = "state_changed"

	// MessageTypeAutoSyncComplete is sent after an automatic upload or download
	MessageTypeAutoSyncComplete MessageType = "autoSyncComplete"

	// MessageTypeStats carries the task summary; sent on connect and after changes
	MessageTypeStats MessageType = "stats"
)

// Message represents a dashboard broadcast message
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Server serves the JSON API and the /ws change feed for one tracker.
type Server struct {
	addr    string
	tracker *tracker.Tracker
	mux     *http.ServeMux
	hub     *hub
	logger  *log.Logger

	ln   net.Listener
	srv  *http.Server
	done chan struct{}

	// base is cancelled by Stop; websocket readers and writers derive from it.
	base   context.Context
	cancel context.CancelFunc
}

// Config holds server configuration
type Config struct {
	// Host to bind (default: 127.0.0.1)
	Host string

	// Port to listen on (default: 8787, 0 picks a free port)
	Port int

	// Logger for server activity (default: stderr logger)
	Logger *log.Logger
}

// DefaultConfig binds the loopback interface on port 8787.
func DefaultConfig() *Config {
	return &Config{Host: "127.0.0.1", Port: 8787}
}

// NewServer creates a dashboard server for tr. A nil config means
// DefaultConfig.
func NewServer(tr *tracker.Tracker, config *Config) *Server {
	cfg := DefaultConfig()
	if config != nil {
		cfg.Port = config.Port
		if config.Host != "" {
			cfg.Host = config.Host
		}
		cfg.Logger = config.Logger
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[dashboard] ", log.LstdFlags)
	}

	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		tracker: tr,
		hub:     newHub(cfg.Logger),
		logger:  cfg.Logger,
		base:    base,
		cancel:  cancel,
	}
	s.mux = s.routes()
	return s
}

// Handler returns the HTTP handler with every route.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handlePurgeTask)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.taskCommand(s.tracker.ToggleComplete))
	mux.HandleFunc("POST /api/tasks/{id}/delete", s.taskCommand(s.tracker.SoftDelete))
	mux.HandleFunc("POST /api/tasks/{id}/restore", s.taskCommand(s.tracker.Restore))
	mux.HandleFunc("POST /api/tasks/{id}/postpone", s.handlePostpone)
	mux.HandleFunc("POST /api/organize", s.handleOrganize)

	mux.HandleFunc("GET /api/inbox", s.handleInbox)
	mux.HandleFunc("GET /api/quadrants", s.handleQuadrants)
	mux.HandleFunc("GET /api/board", s.handleBoard)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/goals", s.handleGoals)
	mux.HandleFunc("GET /api/readings", s.handleReadings)
	mux.HandleFunc("GET /api/tags", s.handleTags)
	mux.HandleFunc("GET /api/export", s.handleExport)

	mux.HandleFunc("POST /api/sync/upload", s.handleSyncUpload)
	mux.HandleFunc("POST /api/sync/download", s.handleSyncDownload)

	mux.HandleFunc("GET /{$}", s.handleRoot)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.base },
	}
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.logger.Printf("Dashboard listening on http://%s", ln.Addr())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("Server error: %v", err)
		}
	}()
	return nil
}

// Stop closes every websocket and shuts the HTTP server down, waiting up to
// five seconds for in-flight requests.
func (s *Server) Stop() error {
	s.cancel()
	s.hub.shutdown()
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	<-s.done
	if err != nil {
		return fmt.Errorf("failed to shut down dashboard: %w", err)
	}
	s.logger.Println("Dashboard server stopped")
	return nil
}

// Broadcast sends msg to every connected client.
func (s *Server) Broadcast(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		s.logger.Printf("Failed to marshal %s message: %v", msg.Type, err)
		return
	}
	s.hub.publish(frame)
}

// handleWebSocket accepts a client from a local page. The current summary is
// always the first frame it receives.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	var first []byte
	if msg, err := s.statsMessage(); err == nil {
		first, _ = json.Marshal(msg)
	}
	s.hub.join(s.base, conn, first)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"clients": s.ClientCount(),
	}
	if e := s.tracker.Sync(); e != nil {
		status["sync"] = e.State().String()
	}
	writeJSON(w, http.StatusOK, status)
}

// handleRoot serves a small index of the endpoints.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>DailyFocus</title>
</head>
<body>
    <h1>DailyFocus</h1>
    <p>API: <a href="/api/tasks">/api/tasks</a>, <a href="/api/quadrants">/api/quadrants</a>, <a href="/api/stats">/api/stats</a></p>
    <p>WebSocket endpoint: <code>ws://%s/ws</code></p>
    <p>Health check: <a href="/health">/health</a></p>
</body>
</html>`, r.Host)
}

// GetAddr returns the bound address once started, else the configured one.
func (s *Server) GetAddr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	return s.hub.count()
}
