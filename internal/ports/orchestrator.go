package ports

import "context"

// Result is the orchestrator's (C12) reply to process_message.
type Result struct {
	Response   string  `json:"response"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Orchestrator sequences the five-stage pipeline per conversation.
type Orchestrator interface {
	ProcessMessage(ctx context.Context, text, conversationID string) (*Result, error)
}
