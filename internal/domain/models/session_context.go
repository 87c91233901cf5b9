package models

import "time"

// TurnRole is who spoke a ConversationTurn.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one message in a conversation's ephemeral history.
type ConversationTurn struct {
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewConversationTurn(role TurnRole, content string) ConversationTurn {
	return ConversationTurn{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// SessionContext is the ephemeral (C2) projection of one conversation:
// turns, the active plan reference, and opaque agent/tool state, all
// bounded by a TTL.
type SessionContext struct {
	SessionID      string                 `json:"session_id"`
	ConversationID string                 `json:"conversation_id"`
	Turns          []ConversationTurn     `json:"turns"`
	ActivePlanID   string                 `json:"active_plan_id,omitempty"`
	AgentState     map[string]any         `json:"agent_state"`
	ToolOutputs    map[string]any         `json:"tool_outputs"`
	TTLSeconds     int                    `json:"ttl_seconds"`
}

func NewSessionContext(sessionID, conversationID string, ttlSeconds int) *SessionContext {
	return &SessionContext{
		SessionID:      sessionID,
		ConversationID: conversationID,
		Turns:          make([]ConversationTurn, 0),
		AgentState:     make(map[string]any),
		ToolOutputs:    make(map[string]any),
		TTLSeconds:     ttlSeconds,
	}
}
