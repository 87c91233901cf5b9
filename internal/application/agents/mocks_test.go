package agents

import (
	"context"

	"github.com/longregen/slovo-agent/internal/ports"
)

// fakeLLM is a minimal ports.LLMService double. A nil fakeLLM or one with
// configured=false reports Configured() == false so agents fall back to
// their heuristic paths.
type fakeLLM struct {
	configured bool
	chatResp   *ports.LLMResponse
	chatErr    error
}

func (f *fakeLLM) Configured() bool { return f != nil && f.configured }

func (f *fakeLLM) Chat(ctx context.Context, messages []ports.LLMMessage) (*ports.LLMResponse, error) {
	return f.chatResp, f.chatErr
}

func (f *fakeLLM) StructuredChat(ctx context.Context, messages []ports.LLMMessage, schemaHint string) (*ports.LLMResponse, error) {
	return f.chatResp, f.chatErr
}

func (f *fakeLLM) ChatStream(ctx context.Context, messages []ports.LLMMessage) (<-chan ports.LLMStreamChunk, error) {
	ch := make(chan ports.LLMStreamChunk)
	close(ch)
	return ch, nil
}

var _ ports.LLMService = (*fakeLLM)(nil)

// fakeRetrieval is a minimal ports.RetrievalPipeline double.
type fakeRetrieval struct {
	ctx *ports.MemoryContext
	err error
}

func (f *fakeRetrieval) Retrieve(ctx context.Context, req ports.RetrievalRequest) (*ports.MemoryContext, error) {
	return f.ctx, f.err
}

var _ ports.RetrievalPipeline = (*fakeRetrieval)(nil)
