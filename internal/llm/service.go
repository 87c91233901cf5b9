package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/longregen/slovo-agent/internal/adapters/circuitbreaker"
	"github.com/longregen/slovo-agent/internal/ports"
)

// LLMTimeout is the maximum time to wait for a single LLM call, per
// spec §5's default model timeout.
const LLMTimeout = 60 * time.Second

// Service implements ports.LLMService over the raw OpenAI-compatible
// Client, wrapping every call in a circuit breaker the way the five
// agents' typed call sites expect.
type Service struct {
	client  *Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewService creates a new LLM service. client may be nil, in which case
// Configured() reports false and every call returns an "llm not configured" error.
func NewService(client *Client) *Service {
	return &Service{
		client:  client,
		breaker: circuitbreaker.New(5, 30*time.Second),
	}
}

func (s *Service) Configured() bool {
	return s.client != nil
}

// Chat sends a non-streaming chat request.
func (s *Service) Chat(ctx context.Context, messages []ports.LLMMessage) (*ports.LLMResponse, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("llm not configured")
	}
	var result *ports.LLMResponse
	err := s.breaker.Execute(func() error {
		var err error
		result, err = s.doChat(ctx, messages)
		return err
	})
	return result, err
}

// StructuredChat appends schemaHint as a system instruction asking for a
// JSON object matching it, then runs the same breaker-wrapped call. The
// caller (one of the five agents) parses Content as JSON.
func (s *Service) StructuredChat(ctx context.Context, messages []ports.LLMMessage, schemaHint string) (*ports.LLMResponse, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("llm not configured")
	}
	augmented := append([]ports.LLMMessage{{
		Role:    "system",
		Content: "Respond with a single JSON object matching this shape, no prose: " + schemaHint,
	}}, messages...)
	var result *ports.LLMResponse
	err := s.breaker.Execute(func() error {
		var err error
		result, err = s.doChat(ctx, augmented)
		return err
	})
	return result, err
}

func (s *Service) doChat(ctx context.Context, messages []ports.LLMMessage) (*ports.LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, LLMTimeout)
	defer cancel()

	response, err := s.client.Chat(ctx, s.convertMessages(messages))
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &ports.LLMResponse{
		Content: response.Choices[0].Message.Content,
	}, nil
}

// ChatStream sends a streaming chat request.
func (s *Service) ChatStream(parentCtx context.Context, messages []ports.LLMMessage) (<-chan ports.LLMStreamChunk, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("llm not configured")
	}
	ctx, cancel := context.WithTimeout(parentCtx, LLMTimeout)

	clientChan, err := s.client.ChatStream(ctx, s.convertMessages(messages))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("chat stream request failed: %w", err)
	}

	outputChan := make(chan ports.LLMStreamChunk, 10)
	go func() {
		defer cancel()
		defer close(outputChan)
		for {
			select {
			case <-ctx.Done():
				outputChan <- ports.LLMStreamChunk{Error: ctx.Err()}
				return
			case chunk, ok := <-clientChan:
				if !ok {
					return
				}
				outputChan <- ports.LLMStreamChunk{
					Content: chunk.Content,
					Done:    chunk.Done,
					Error:   chunk.Error,
				}
			}
		}
	}()

	return outputChan, nil
}

func (s *Service) convertMessages(messages []ports.LLMMessage) []ChatMessage {
	chatMessages := make([]ChatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = ChatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return chatMessages
}
