package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/longregen/slovo-agent/internal/ports"
)

func TestService_NotConfigured(t *testing.T) {
	svc := NewService(nil)
	if svc.Configured() {
		t.Fatal("expected an unconfigured service with a nil client")
	}
	if _, err := svc.Chat(context.Background(), nil); err == nil {
		t.Error("expected Chat to fail when unconfigured")
	}
	if _, err := svc.ChatStream(context.Background(), nil); err == nil {
		t.Error("expected ChatStream to fail when unconfigured")
	}
}

func TestService_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`)
	}))
	defer srv.Close()

	svc := NewService(NewClient(srv.URL, "key", "model", 100, 0.5))

	resp, err := svc.Chat(context.Background(), []ports.LLMMessage{{Role: "user", Content: "hello"}})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "hi there" {
		t.Errorf("expected content 'hi there', got %q", resp.Content)
	}
}

func TestService_StructuredChat_AugmentsSystemPrompt(t *testing.T) {
	var gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, m := range req.Messages {
			if m.Role == "system" {
				gotContent = m.Content
			}
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`)
	}))
	defer srv.Close()

	svc := NewService(NewClient(srv.URL, "key", "model", 100, 0.5))
	_, err := svc.StructuredChat(context.Background(), []ports.LLMMessage{{Role: "user", Content: "hello"}}, "{intent: string}")
	if err != nil {
		t.Fatalf("StructuredChat failed: %v", err)
	}
	if gotContent == "" {
		t.Fatal("expected a system message to be sent")
	}
}

func TestService_ChatStream_DeliversChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		bw := bufio.NewWriter(w)
		fmt.Fprintf(bw, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n")
		bw.Flush()
		flusher.Flush()
		fmt.Fprintf(bw, "data: {\"choices\":[{\"delta\":{\"content\":\"b\"},\"finish_reason\":\"stop\"}]}\n\n")
		bw.Flush()
		flusher.Flush()
		fmt.Fprintf(bw, "data: [DONE]\n\n")
		bw.Flush()
		flusher.Flush()
	}))
	defer srv.Close()

	svc := NewService(NewClient(srv.URL, "key", "model", 100, 0.5))
	chunks, err := svc.ChatStream(context.Background(), []ports.LLMMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	var content string
	for chunk := range chunks {
		if chunk.Error != nil {
			t.Fatalf("unexpected chunk error: %v", chunk.Error)
		}
		content += chunk.Content
	}
	if content != "ab" {
		t.Errorf("expected accumulated content 'ab', got %q", content)
	}
}

func TestService_ChatStream_ContextCancellation(t *testing.T) {
	block := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"first\"}}]}\n\n")
		flusher.Flush()
		<-block
	}))
	defer srv.Close()
	// Deferred after srv.Close so it runs first: srv.Close waits for the
	// handler, which only returns once block is closed.
	defer close(block)

	svc := NewService(NewClient(srv.URL, "key", "model", 100, 0.5))

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := svc.ChatStream(ctx, []ports.LLMMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	<-chunks // the "first" content chunk
	cancel()

	select {
	case chunk, ok := <-chunks:
		if ok && chunk.Error == nil {
			t.Errorf("expected a cancellation error or channel close, got %+v", chunk)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream to react to context cancellation")
	}
}
