// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/electromart/agenthub/agent/contract"
	"github.com/electromart/agenthub/agent/agents/orchestrator"
	statex "github.com/electromart/agenthub/agent/state"
)

type Config struct {
	Addr         string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"60s"`
}

type Server struct {
	svc  *orchestrator.Service
	http *http.Server
}

func New(cfg Config, svc *orchestrator.Service) *Server {
	s := &Server{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /conversations/{id}", s.handleGetConversation)
	mux.HandleFunc("DELETE /conversations/{id}", s.handleDeleteConversation)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      accessLog(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.http.Addr).Msg("server: listening")
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req contractx.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	resp, err := s.svc.HandleMessage(r.Context(), req)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		log.Error().Err(err).Str("conversation_id", req.ConversationID).Msg("server: chat turn failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type conversationBody struct {
	Conversation *statex.Conversation `json:"conversation"`
	Messages     []statex.Message     `json:"messages"`
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	conv, msgs, err := s.svc.Conversation(r.Context(), id)
	if err != nil {
		if errors.Is(err, statex.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "conversation not found"})
			return
		}
		if errors.Is(err, statex.ErrInvalidID) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "conversation id is required"})
			return
		}
		log.Error().Err(err).Str("conversation_id", id).Msg("server: conversation lookup failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, conversationBody{Conversation: conv, Messages: msgs})
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.svc.Reset(r.Context(), id); err != nil {
		if errors.Is(err, statex.ErrInvalidID) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "conversation id is required"})
			return
		}
		log.Error().Err(err).Str("conversation_id", id).Msg("server: conversation reset failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("server: request")
	})
}
