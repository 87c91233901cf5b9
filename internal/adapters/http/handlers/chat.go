package handlers

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"

	"github.com/longregen/slovo-agent/internal/adapters/http/dto"
	"github.com/longregen/slovo-agent/internal/ports"
)

// ChatHandler serves /chat and /chat/stream, the orchestrator's (C12) HTTP
// front door.
type ChatHandler struct {
	orchestrator ports.Orchestrator
	memory       ports.MemoryManager
	ids          ports.IDGenerator
}

func NewChatHandler(orchestrator ports.Orchestrator, memory ports.MemoryManager, ids ports.IDGenerator) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator, memory: memory, ids: ids}
}

func (h *ChatHandler) conversationID(req dto.ChatRequest) string {
	if req.ConversationID != "" {
		return req.ConversationID
	}
	return h.ids.GenerateConversationID()
}

// Chat handles POST /chat: a single request/response round trip.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.ChatRequest](r, w)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, "invalid_request", "message is required", http.StatusBadRequest)
		return
	}

	conversationID := h.conversationID(*req)
	result, err := h.orchestrator.ProcessMessage(r.Context(), req.Message, conversationID)
	if err != nil {
		respondError(w, "orchestrator_error", err.Error(), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, dto.ChatResponse{
		ID:             h.ids.GenerateResponseID(),
		Response:       result.Response,
		ConversationID: conversationID,
		Reasoning:      result.Reasoning,
		Confidence:     result.Confidence,
	}, http.StatusOK)
}

// ChatStream handles POST /chat/stream: the same pipeline, but the final
// response is emitted as a sequence of word-sized SSE chunks so a client
// can render progressively. The orchestrator itself has no incremental
// output; this handler chunks after the fact.
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.ChatRequest](r, w)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, "invalid_request", "message is required", http.StatusBadRequest)
		return
	}

	conversationID := h.conversationID(*req)
	result, err := h.orchestrator.ProcessMessage(r.Context(), req.Message, conversationID)
	if err != nil {
		respondError(w, "orchestrator_error", err.Error(), http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, "internal_error", "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	bw := bufio.NewWriter(w)
	for _, chunk := range strings.Fields(result.Response) {
		fmt.Fprintf(bw, "data: %s\n\n", chunk)
		bw.Flush()
		flusher.Flush()
	}
	fmt.Fprintf(bw, "event: done\ndata: {}\n\n")
	bw.Flush()
	flusher.Flush()
}
