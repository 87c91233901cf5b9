package handlers

import (
	"net/http"
	"time"

	"github.com/longregen/slovo-agent/internal/adapters/http/dto"
	"github.com/longregen/slovo-agent/internal/ports"
)

const conversationHistoryLimit = 50

// ConversationHandler serves GET /conversation/{id}, reading the C2
// ephemeral projection through the memory manager facade.
type ConversationHandler struct {
	memory ports.MemoryManager
}

func NewConversationHandler(memory ports.MemoryManager) *ConversationHandler {
	return &ConversationHandler{memory: memory}
}

func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "conversation id")
	if !ok {
		return
	}

	turns, err := h.memory.GetRecentTurns(r.Context(), id, conversationHistoryLimit)
	if err != nil {
		respondError(w, "memory_unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}

	messages := make([]dto.TurnResponse, len(turns))
	for i, t := range turns {
		messages[i] = dto.TurnResponse{
			Role:      string(t.Role),
			Content:   t.Content,
			Timestamp: t.Timestamp.Format(time.RFC3339),
		}
	}

	respondJSON(w, dto.ConversationResponse{
		ConversationID: id,
		Messages:       messages,
	}, http.StatusOK)
}
