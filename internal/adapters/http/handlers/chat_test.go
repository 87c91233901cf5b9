package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/longregen/slovo-agent/internal/adapters/http/dto"
	"github.com/longregen/slovo-agent/internal/ports"
)

func TestChatHandler_Chat(t *testing.T) {
	orch := &fakeOrchestrator{result: &ports.Result{Response: "hi there", Reasoning: "greeting", Confidence: 0.9}}
	h := NewChatHandler(orch, &fakeMemoryManager{}, fakeIDGenerator{})

	body, _ := json.Marshal(dto.ChatRequest{Message: "hello", ConversationID: "conv_1"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "hi there" {
		t.Errorf("expected response 'hi there', got %q", resp.Response)
	}
	if resp.ConversationID != "conv_1" {
		t.Errorf("expected conversation_id conv_1, got %q", resp.ConversationID)
	}
	if orch.gotConversationID != "conv_1" {
		t.Errorf("expected orchestrator to be called with conv_1, got %q", orch.gotConversationID)
	}
}

func TestChatHandler_Chat_GeneratesConversationID(t *testing.T) {
	orch := &fakeOrchestrator{result: &ports.Result{Response: "ok"}}
	h := NewChatHandler(orch, &fakeMemoryManager{}, fakeIDGenerator{})

	body, _ := json.Marshal(dto.ChatRequest{Message: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Chat(rec, req)

	var resp dto.ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ConversationID == "" {
		t.Error("expected a generated conversation id")
	}
}

func TestChatHandler_Chat_EmptyMessage(t *testing.T) {
	h := NewChatHandler(&fakeOrchestrator{}, &fakeMemoryManager{}, fakeIDGenerator{})

	body, _ := json.Marshal(dto.ChatRequest{Message: ""})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Chat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatHandler_Chat_OrchestratorError(t *testing.T) {
	orch := &fakeOrchestrator{err: errTest}
	h := NewChatHandler(orch, &fakeMemoryManager{}, fakeIDGenerator{})

	body, _ := json.Marshal(dto.ChatRequest{Message: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Chat(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestChatHandler_ChatStream(t *testing.T) {
	orch := &fakeOrchestrator{result: &ports.Result{Response: "one two three"}}
	h := NewChatHandler(orch, &fakeMemoryManager{}, fakeIDGenerator{})

	body, _ := json.Marshal(dto.ChatRequest{Message: "hello", ConversationID: "conv_2"})
	req := httptest.NewRequest(http.MethodPost, "/chat/stream", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.ChatStream(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := rec.Body.String()
	if !bytes.Contains([]byte(out), []byte("data: one")) {
		t.Errorf("expected streamed chunk to contain first word, got %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("event: done")) {
		t.Errorf("expected a terminal done event, got %q", out)
	}
}
