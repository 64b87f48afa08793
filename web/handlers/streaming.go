package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/modelmayhem/mayhem/internal/orchestrator"
)

// handleDebateStream drives the debate tick loop server-side and streams
// each completed turn as a Server-Sent Event. The client only listens;
// closing the connection cancels the loop but leaves the session alive
// for a later reconnect.
func (h *Handler) handleDebateStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	slog.Debug("New debate stream connection", "id", id, "remote_addr", r.RemoteAddr)

	sess := h.sessions.Get(id)
	if sess == nil {
		http.Error(w, "debate session not found", http.StatusNotFound)
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		slog.Error("Streaming unsupported: ResponseWriter does not implement http.Flusher")
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Send turns completed before this connection attached
	for _, turn := range sess.Turns() {
		h.sendSSEEvent(w, flusher, "turn_complete", turn)
	}

	if sess.Done() {
		h.sendSSEEvent(w, flusher, "debate_complete", h.sessionState(sess))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	for {
		turn, err := sess.NextTurn(ctx)
		switch {
		case err == orchestrator.ErrSessionDone:
			h.sendSSEEvent(w, flusher, "debate_complete", h.sessionState(sess))
			return
		case err == orchestrator.ErrSessionBusy:
			// Another client holds the tick; poll until it settles.
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		case err != nil:
			if ctx.Err() != nil {
				slog.Debug("Stream context done", "id", id)
				return
			}
			slog.Error("Stream turn failed", "id", id, "error", err)
			h.sendSSEError(w, flusher, err.Error())
			return
		case turn == nil:
			// Stale result from a superseded session.
			return
		}

		h.sendSSEEvent(w, flusher, "turn_complete", turn)
		sess.FinishTyping()

		if sess.Done() {
			h.sendSSEEvent(w, flusher, "debate_complete", h.sessionState(sess))
			return
		}
	}
}

// sendSSEEvent sends a server-sent event.
func (h *Handler) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, jsonData); err != nil {
		slog.Error("Failed to write SSE event", "error", err)
		return
	}
	flusher.Flush()
}

// sendSSEError sends an error event.
func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, message string) {
	h.sendSSEEvent(w, flusher, "error", map[string]string{"message": message})
}
