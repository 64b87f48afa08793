// Package handlers provides the JSON HTTP API.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/modelmayhem/mayhem/internal/config"
	"github.com/modelmayhem/mayhem/internal/core"
	"github.com/modelmayhem/mayhem/internal/export"
	"github.com/modelmayhem/mayhem/internal/orchestrator"
	"github.com/modelmayhem/mayhem/internal/persona"
	"github.com/modelmayhem/mayhem/internal/provider"
	"github.com/modelmayhem/mayhem/internal/storage"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	orch     *orchestrator.Orchestrator
	sessions *orchestrator.Manager
	registry *provider.Registry
	storage  storage.Storage
	debate   config.Debate
}

// New creates a new Handler. store may be nil; custom persona endpoints
// then report that storage is unavailable.
func New(orch *orchestrator.Orchestrator, registry *provider.Registry, store storage.Storage, debate config.Debate) *Handler {
	return &Handler{
		orch:     orch,
		sessions: orchestrator.NewManager(),
		registry: registry,
		storage:  store,
		debate:   debate,
	}
}

// Router builds the chi router with all routes registered.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.handleChat)
		r.Get("/modes", h.handleListModes)
		r.Get("/models", h.handleListModels)

		r.Get("/personas", h.handleListPersonas)
		r.Post("/personas", h.handleCreatePersona)
		r.Delete("/personas/{id}", h.handleDeletePersona)

		r.Route("/debates", func(r chi.Router) {
			r.Post("/", h.handleCreateDebate)
			r.Get("/{id}", h.handleGetDebate)
			r.Post("/{id}/next", h.handleNextTurn)
			r.Post("/{id}/typed", h.handleFinishTyping)
			r.Delete("/{id}", h.handleStopDebate)
			r.Get("/{id}/stream", h.handleDebateStream)
			r.Get("/{id}/export/{format}", h.handleExportDebate)
		})
	})

	return r
}

// handleChat runs one round-robin pass: every persona of the mode
// responds once to the user message.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req core.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.chatError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		h.chatError(w, "message is required", http.StatusBadRequest)
		return
	}

	if !core.ValidMode(req.Mode) {
		h.chatError(w, fmt.Sprintf("Invalid mode. Use one of: %s", joinModes()), http.StatusBadRequest)
		return
	}

	agents := h.orch.RunAgents(r.Context(), req.Message, req.Mode, req.History)
	h.json(w, core.ChatResponse{Agents: agents})
}

func (h *Handler) handleListModes(w http.ResponseWriter, r *http.Request) {
	h.json(w, map[string]interface{}{"modes": core.Modes()})
}

func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	h.json(w, map[string]interface{}{"models": h.registry.Keys()})
}

// Persona handlers

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	result := persona.DefaultFragments()

	if h.storage != nil {
		custom, err := h.storage.ListPersonas()
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, p := range custom {
			result = append(result, persona.Fragment{
				ID:       p.ID,
				Name:     p.Name,
				Fragment: p.Fragment,
			})
		}
	}

	h.json(w, map[string]interface{}{"personas": result})
}

func (h *Handler) handleCreatePersona(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.jsonError(w, "persona storage is not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Fragment string `json:"fragment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		req.ID = core.GenerateID()
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Fragment) == "" {
		h.jsonError(w, "name and fragment are required", http.StatusBadRequest)
		return
	}
	if persona.Valid(req.ID) {
		h.jsonError(w, "cannot overwrite a builtin persona", http.StatusConflict)
		return
	}

	f := &persona.StoredFragment{
		ID:       req.ID,
		Name:     strings.TrimSpace(req.Name),
		Fragment: req.Fragment,
	}
	if err := h.storage.SavePersona(f); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(f)
}

func (h *Handler) handleDeletePersona(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.jsonError(w, "persona storage is not configured", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")
	if persona.Valid(id) {
		h.jsonError(w, "cannot delete a builtin persona", http.StatusConflict)
		return
	}

	if err := h.storage.DeletePersona(id); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Debate session handlers

func (h *Handler) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt   string    `json:"prompt"`
		Mode     core.Mode `json:"mode"`
		MaxTurns int       `json:"max_turns"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		h.jsonError(w, "prompt is required", http.StatusBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = core.ModeDebate
	}
	if !core.ValidMode(req.Mode) {
		h.jsonError(w, fmt.Sprintf("Invalid mode. Use one of: %s", joinModes()), http.StatusBadRequest)
		return
	}

	maxTurns := req.MaxTurns
	if maxTurns <= 0 {
		maxTurns = h.debate.MaxTurns
	}

	sess := h.orch.NewSession(orchestrator.SessionConfig{
		Mode:     req.Mode,
		Prompt:   req.Prompt,
		MaxTurns: maxTurns,
		MinWait:  h.debate.MinWait,
		MaxWait:  h.debate.MaxWait,
	})
	h.sessions.Add(sess)

	slog.Info("Debate session created", "session", sess.ID(), "mode", req.Mode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(h.sessionState(sess))
}

func (h *Handler) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(chi.URLParam(r, "id"))
	if sess == nil {
		h.jsonError(w, "debate session not found", http.StatusNotFound)
		return
	}

	h.json(w, h.sessionState(sess))
}

// handleNextTurn executes one externally triggered debate tick.
func (h *Handler) handleNextTurn(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(chi.URLParam(r, "id"))
	if sess == nil {
		h.jsonError(w, "debate session not found", http.StatusNotFound)
		return
	}

	turn, err := sess.NextTurn(r.Context())
	switch {
	case err == orchestrator.ErrSessionDone:
		h.jsonError(w, "debate session is over", http.StatusGone)
	case err == orchestrator.ErrSessionBusy:
		h.jsonError(w, "a turn is already in progress", http.StatusConflict)
	case err != nil:
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
	case turn == nil:
		// Stale result from a superseded session.
		h.jsonError(w, "debate session is over", http.StatusGone)
	default:
		h.json(w, map[string]interface{}{
			"turn": turn,
			"done": sess.Done(),
		})
	}
}

// handleFinishTyping marks the last turn's reveal as complete.
func (h *Handler) handleFinishTyping(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(chi.URLParam(r, "id"))
	if sess == nil {
		h.jsonError(w, "debate session not found", http.StatusNotFound)
		return
	}

	sess.FinishTyping()
	h.json(w, h.sessionState(sess))
}

func (h *Handler) handleStopDebate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.sessions.Get(id) == nil {
		h.jsonError(w, "debate session not found", http.StatusNotFound)
		return
	}

	h.sessions.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportDebate(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(chi.URLParam(r, "id"))
	if sess == nil {
		h.jsonError(w, "debate session not found", http.StatusNotFound)
		return
	}

	format := chi.URLParam(r, "format")
	exporter, err := export.GetExporter(export.Format(format))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transcript := &export.Transcript{
		SessionID: sess.ID(),
		Mode:      sess.Mode(),
		Prompt:    sess.Prompt(),
		CreatedAt: sess.CreatedAt(),
		Turns:     sess.Turns(),
	}

	filename := export.GenerateFilename(transcript, exporter.FileExtension())

	switch format {
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
	case "json":
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/markdown")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := exporter.Export(transcript, w); err != nil {
		slog.Error("Export failed", "session", sess.ID(), "format", format, "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
	}
}

// Helper methods

func (h *Handler) sessionState(sess *orchestrator.Session) map[string]interface{} {
	return map[string]interface{}{
		"id":         sess.ID(),
		"mode":       sess.Mode(),
		"prompt":     sess.Prompt(),
		"status":     sess.Status(),
		"turn_index": sess.TurnIndex(),
		"done":       sess.Done(),
		"history":    sess.History(),
		"created_at": sess.CreatedAt(),
	}
}

func (h *Handler) json(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// chatError writes the chat endpoint's error shape: an empty agents
// slice alongside the message.
func (h *Handler) chatError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(core.ChatResponse{
		Agents: []core.AgentResponse{},
		Error:  message,
	})
}

func joinModes() string {
	modes := core.Modes()
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}
