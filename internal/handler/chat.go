// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/techgadgets/support-chat/internal/chat"
	"github.com/techgadgets/support-chat/internal/model"
	"github.com/techgadgets/support-chat/internal/store"
	"github.com/techgadgets/support-chat/pkg/logger"
)

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	service *chat.Service
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *chat.Service, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// SendMessage handles POST /chat/message
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Message is required and must be a string")
		return
	}

	resp, err := h.service.SendMessage(r.Context(), req)
	if err != nil {
		var verr *chat.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		h.logger.Error("failed to process message")
		writeError(w, http.StatusInternalServerError, "Failed to process your message. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /chat/history/{conversationId}
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationId")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "Conversation ID is required")
		return
	}

	resp, err := h.service.History(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		h.logger.Error("failed to fetch history")
		writeError(w, http.StatusInternalServerError, "Failed to fetch conversation history")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
