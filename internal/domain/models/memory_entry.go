package models

import "time"

// MemoryKind discriminates the MemoryEntry sum type. Source encodes
// Semantic/Episodic/Preference as base-class-with-kind-field branches; here
// each is its own struct with a Kind field so callers type-switch rather
// than inheriting.
type MemoryKind string

const (
	MemoryKindSemantic   MemoryKind = "semantic"
	MemoryKindEpisodic   MemoryKind = "episodic"
	MemoryKindPreference MemoryKind = "preference"
)

// PreferenceSource tags how a Preference entry was produced.
type PreferenceSource string

const (
	PreferenceSourceUserEdit        PreferenceSource = "user_edit"
	PreferenceSourceVerifierApprove PreferenceSource = "verifier_approved"
	PreferenceSourceSystemDefault   PreferenceSource = "system_default"
)

const (
	maxSemanticSummaryLen = 500
	maxEpisodicSummaryLen = 2000
	maxPreferenceKeyLen   = 255
)

// SemanticEntry is a vectorised fact living in C3.
type SemanticEntry struct {
	ID             string    `json:"id"`
	Kind           MemoryKind `json:"kind"`
	Embedding      []float32 `json:"embedding"`
	Source         string    `json:"source"`
	Summary        string    `json:"summary"`
	ConversationID string    `json:"conversation_id,omitempty"`
	ToolName       string    `json:"tool_name,omitempty"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewSemanticEntry(id, summary, source string) *SemanticEntry {
	if len(summary) > maxSemanticSummaryLen {
		summary = summary[:maxSemanticSummaryLen]
	}
	return &SemanticEntry{
		ID:        id,
		Kind:      MemoryKindSemantic,
		Summary:   summary,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// EpisodicMetadata carries the optional contextual fields for an episodic
// entry; all are optional per spec §3.
type EpisodicMetadata struct {
	ConversationID   string `json:"conversation_id,omitempty"`
	StepIndex        *int   `json:"step_index,omitempty"`
	ToolName         string `json:"tool_name,omitempty"`
	ErrorCategory    string `json:"error_category,omitempty"`
	CorrectionReason string `json:"correction_reason,omitempty"`
}

// EpisodicEntry is an append-only, immutable audit record in C4.
type EpisodicEntry struct {
	ID         string           `json:"id"`
	Kind       MemoryKind       `json:"kind"`
	Agent      string           `json:"agent"`
	ActionType string           `json:"action_type"`
	Summary    string           `json:"summary"`
	Confidence float64          `json:"confidence"`
	Metadata   EpisodicMetadata `json:"metadata"`
	EventTime  time.Time        `json:"event_time"`
	CreatedAt  time.Time        `json:"created_at"`
}

func NewEpisodicEntry(id, agent, actionType, summary string) *EpisodicEntry {
	if len(summary) > maxEpisodicSummaryLen {
		summary = summary[:maxEpisodicSummaryLen]
	}
	now := time.Now().UTC()
	return &EpisodicEntry{
		ID:         id,
		Kind:       MemoryKindEpisodic,
		Agent:      agent,
		ActionType: actionType,
		Summary:    summary,
		EventTime:  now,
		CreatedAt:  now,
	}
}

// PreferenceEntry is an upsert-keyed user preference in C4.
type PreferenceEntry struct {
	ID         string           `json:"id"`
	Kind       MemoryKind       `json:"kind"`
	Key        string           `json:"key"`
	Value      string           `json:"value"`
	Source     PreferenceSource `json:"source"`
	Confidence float64          `json:"confidence"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func NewPreferenceEntry(id, key, value string, source PreferenceSource) *PreferenceEntry {
	if len(key) > maxPreferenceKeyLen {
		key = key[:maxPreferenceKeyLen]
	}
	now := time.Now().UTC()
	return &PreferenceEntry{
		ID:        id,
		Kind:      MemoryKindPreference,
		Key:       key,
		Value:     value,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
