package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/assistant"
	"github.com/spetersoncode/assistant/agent"
	"github.com/spetersoncode/assistant/agui"
	"github.com/spetersoncode/assistant/event"
	"github.com/spetersoncode/assistant/stream"
)

const maxBodyBytes = 64 << 10

// Runner starts an agent turn. *agent.Agent implements it.
type Runner interface {
	RunStream(ctx context.Context, input string, opts ...agent.Option) <-chan event.Event
}

// Server serves the chat API over HTTP.
type Server struct {
	runner    Runner
	heartbeat time.Duration
	log       *slog.Logger
}

// NewServer creates a Server. A nil logger uses slog.Default().
func NewServer(r Runner, heartbeat time.Duration, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{runner: r, heartbeat: heartbeat, log: log}
}

// Routes returns the HTTP handler with all endpoints registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /api/agent", s.handleAgent)
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /{$}", rootHandler)
	return corsMiddleware(mux)
}

type chatRequest struct {
	Message string `json:"message"`
}

// handleChat runs one agent turn and streams token, done and error events.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn("invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		err := ai.NewValidationError("message", "must not be empty")
		s.log.Warn("invalid input", "error", err)
		writeError(w, err.StatusCode(), err.Error())
		return
	}

	sw, err := stream.NewWriter(w)
	if err != nil {
		s.log.Error("streaming not supported", "error", err)
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	log := s.log.With("turn_id", uuid.NewString())
	log.Info("turn started", "message_chars", len(req.Message))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := s.runner.RunStream(ctx, req.Message)
	sent, err := stream.Pump(ctx, sw, stream.Adapt(events), s.heartbeat)
	cancel()

	duration := time.Since(start)
	if err != nil {
		log.Error("turn stream failed",
			"duration_ms", duration.Milliseconds(),
			"events_sent", sent,
			"error", err,
		)
		return
	}
	log.Info("turn completed",
		"duration_ms", duration.Milliseconds(),
		"events_sent", sent,
	)
}

// handleAgent runs one agent turn for an AG-UI frontend.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var input agui.RunAgentInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.log.Warn("invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	prepared, err := input.Prepare()
	if err != nil {
		s.log.Warn("invalid input", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sw, err := stream.NewWriter(w)
	if err != nil {
		s.log.Error("streaming not supported", "error", err)
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	mapper := agui.NewMapper(prepared.ThreadID, prepared.RunID)
	log := s.log.With(
		"run_id", mapper.RunID(),
		"thread_id", mapper.ThreadID(),
	)
	log.Info("run started")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := sw.StartHeartbeat(ctx, s.heartbeat)
	defer stop()

	var sent int
	var lastError error
	for ev := range mapper.MapStream(s.runner.RunStream(ctx, prepared.Message)) {
		data, err := ev.ToJSON()
		if err == nil {
			err = sw.WriteFrame(string(ev.Type()), data)
		}
		if err != nil {
			lastError = err
			break
		}
		sent++
		log.Debug("sent AG-UI event", "event_type", ev.Type(), "event_num", sent)
	}
	cancel()

	duration := time.Since(start)
	if lastError != nil {
		log.Error("run stream failed",
			"duration_ms", duration.Milliseconds(),
			"events_sent", sent,
			"error", lastError,
		)
		return
	}
	log.Info("run completed",
		"duration_ms", duration.Milliseconds(),
		"events_sent", sent,
	)
}

// corsMiddleware adds CORS headers for cross-origin frontend requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "AI Research Assistant API is running!",
		"docs":    "/docs",
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
