package models

import "time"

// StoreLocation is the physical store tag a MemoryMetadata row points to.
type StoreLocation string

const (
	StoreLocationVector    StoreLocation = "vector"
	StoreLocationDurable   StoreLocation = "durable"
	StoreLocationEphemeral StoreLocation = "ephemeral"
)

// MetadataSource tags where a memory write originated.
type MetadataSource string

const (
	MetadataSourceConversation MetadataSource = "conversation"
	MetadataSourceTool         MetadataSource = "tool"
	MetadataSourceUserEdit     MetadataSource = "user_edit"
	MetadataSourceVerifier     MetadataSource = "verifier"
)

const maxMetadataSummaryLen = 200

// MemoryMetadata is the cross-store index row: every persisted Semantic,
// Preference, and Episodic entry has exactly one of these.
type MemoryMetadata struct {
	ID         string         `json:"id"`
	EntryID    string         `json:"entry_id"`
	Kind       MemoryKind     `json:"kind"`
	Store      StoreLocation  `json:"store"`
	Summary    string         `json:"summary"`
	Source     MetadataSource `json:"source"`
	Confidence float64        `json:"confidence"`
	Deleted    bool           `json:"deleted"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func NewMemoryMetadata(id, entryID string, kind MemoryKind, store StoreLocation, summary string, source MetadataSource, confidence float64) *MemoryMetadata {
	if len(summary) > maxMetadataSummaryLen {
		summary = summary[:maxMetadataSummaryLen]
	}
	now := time.Now().UTC()
	return &MemoryMetadata{
		ID:         id,
		EntryID:    entryID,
		Kind:       kind,
		Store:      store,
		Summary:    summary,
		Source:     source,
		Confidence: confidence,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (m *MemoryMetadata) SoftDelete() {
	m.Deleted = true
	m.UpdatedAt = time.Now().UTC()
}
