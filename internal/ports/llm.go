package ports

import "context"

// LLMMessage is a single turn in the context sent to the language model.
type LLMMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMResponse is a non-streaming completion, optionally shaped by a
// structured output schema (used by the five agents of C11).
type LLMResponse struct {
	Content   string `json:"content,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// LLMStreamChunk is a fragment of a streaming completion.
type LLMStreamChunk struct {
	Content string
	Done    bool
	Error   error
}

// LLMService is the opaque language-model collaborator (spec §1: wire
// format out of scope). StructuredChat asks for a JSON object matching
// schemaHint (a human-readable description of the expected shape,
// embedded in the system prompt) — agents parse the content themselves.
type LLMService interface {
	Chat(ctx context.Context, messages []LLMMessage) (*LLMResponse, error)
	StructuredChat(ctx context.Context, messages []LLMMessage, schemaHint string) (*LLMResponse, error)
	ChatStream(ctx context.Context, messages []LLMMessage) (<-chan LLMStreamChunk, error)
	Configured() bool
}

// EmbeddingResult is a single embedding vector plus the model that
// produced it.
type EmbeddingResult struct {
	Embedding  []float32 `json:"embedding"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
}

// EmbeddingService is the opaque embedding collaborator (spec §1).
type EmbeddingService interface {
	Embed(ctx context.Context, text string) (*EmbeddingResult, error)
	EmbedBatch(ctx context.Context, texts []string) ([]*EmbeddingResult, error)
	GetDimensions() int
	Configured() bool
}
