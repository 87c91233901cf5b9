package dto

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	ID             string  `json:"id"`
	Response       string  `json:"response"`
	ConversationID string  `json:"conversation_id"`
	Reasoning      string  `json:"reasoning,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
}

// TurnResponse represents one stored conversation turn in GET /conversation/{id}.
type TurnResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ConversationResponse is the body returned by GET /conversation/{id}.
type ConversationResponse struct {
	ConversationID string         `json:"conversation_id"`
	Messages       []TurnResponse `json:"messages"`
}
