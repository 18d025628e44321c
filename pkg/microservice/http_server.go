package microservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tagus/physai-agent/pkg/agent"
	"github.com/tagus/physai-agent/pkg/interfaces"
	"github.com/tagus/physai-agent/pkg/logging"
)

const maxRequestBytes = 64 << 10

// Asker answers one chat turn
type Asker interface {
	Ask(ctx context.Context, input string, history ...interfaces.Message) (*agent.RunResult, error)
}

// HTTPServer exposes the assistant to the docs-site chat widget
type HTTPServer struct {
	asker         Asker
	agentName     string
	allowedOrigin string
	suggestions   []string
	logger        logging.Logger

	mu      sync.Mutex
	server  *http.Server
	stopped bool
}

// ChatRequest is the body of POST /api/v1/chat
type ChatRequest struct {
	Message string               `json:"message"`
	History []interfaces.Message `json:"history,omitempty"`
}

// ChatResponse is the answer to a ChatRequest
type ChatResponse struct {
	Reply string                 `json:"reply"`
	RunID string                 `json:"run_id"`
	Model string                 `json:"model"`
	Usage *interfaces.TokenUsage `json:"usage,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ServerOption configures an HTTPServer
type ServerOption func(*HTTPServer)

// WithAllowedOrigin sets the single origin allowed by CORS
func WithAllowedOrigin(origin string) ServerOption {
	return func(h *HTTPServer) {
		h.allowedOrigin = origin
	}
}

// WithSuggestions sets the quick-action prompts offered by the widget
func WithSuggestions(suggestions ...string) ServerOption {
	return func(h *HTTPServer) {
		h.suggestions = suggestions
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) ServerOption {
	return func(h *HTTPServer) {
		h.logger = logger
	}
}

// NewHTTPServer creates a new HTTP server for the assistant
func NewHTTPServer(asker Asker, agentName string, options ...ServerOption) *HTTPServer {
	h := &HTTPServer{
		asker:         asker,
		agentName:     agentName,
		allowedOrigin: "http://localhost:3000",
		suggestions:   []string{"Getting Started", "Module Overview", "Troubleshooting"},
	}
	for _, option := range options {
		option(h)
	}
	if h.logger == nil {
		h.logger = logging.New()
	}
	return h
}

// Handler returns the routed handler with CORS applied
func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/api/v1/chat", h.handleChat)
	mux.HandleFunc("/api/v1/chat/suggestions", h.handleSuggestions)
	return h.addCORS(mux)
}

// Start listens on port and serves until Stop is called.
// It returns nil after a graceful shutdown.
func (h *HTTPServer) Start(port int) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	return h.Serve(listener)
}

// Serve serves on an existing listener until Stop is called
func (h *HTTPServer) Serve(listener net.Listener) error {
	server := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return listener.Close()
	}
	h.server = server
	h.mu.Unlock()

	h.logger.Info(context.Background(), "HTTP server starting", map[string]interface{}{
		"addr":           listener.Addr().String(),
		"allowed_origin": h.allowedOrigin,
	})

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server. A Serve call that has not started yet returns immediately.
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.mu.Lock()
	h.stopped = true
	server := h.server
	h.mu.Unlock()
	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// addCORS allows the configured origin only
func (h *HTTPServer) addCORS(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case origin == "":
		case h.allowedOrigin == "*":
			// credentials are never allowed for a wildcard origin
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		case origin == h.allowedOrigin:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

// handleHealth provides a health check endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"agent":  h.agentName,
		"time":   time.Now().Unix(),
	})
}

func (h *HTTPServer) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": h.suggestions,
	})
}

// handleChat runs one chat turn
func (h *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.New().String()
	w.Header().Set("X-Request-ID", requestID)
	ctx := logging.WithRequestID(r.Context(), requestID)

	var req ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid JSON: %v", err), RequestID: requestID})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required", RequestID: requestID})
		return
	}

	result, err := h.asker.Ask(ctx, req.Message, req.History...)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, agent.ErrEmptyInput) {
			status = http.StatusBadRequest
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		h.logger.Error(ctx, "Chat request failed", map[string]interface{}{
			"error":  err.Error(),
			"status": status,
		})
		writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: requestID})
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Reply: result.FinalOutput,
		RunID: result.RunID,
		Model: result.Model,
		Usage: result.Usage,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
