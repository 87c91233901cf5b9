package dto

// UpdateMemoryRequest is the body of PUT /memory/{id}.
type UpdateMemoryRequest struct {
	Content    *string  `json:"content,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// DeleteMemoryRequest is the body of DELETE /memory/{id}.
type DeleteMemoryRequest struct {
	Confirm bool `json:"confirm"`
}

// ResetRequest is the body of POST /memory/reset.
type ResetRequest struct {
	ConfirmFullReset   bool `json:"confirm_full_reset"`
	PreserveUserProfile bool `json:"preserve_user_profile"`
}

// MemoryListResponse is the body of GET /memory.
type MemoryListResponse struct {
	Items  []MemoryMetadataDTO `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// MemoryMetadataDTO mirrors models.MemoryMetadata for the wire; kept
// separate from the domain type so a schema change there doesn't silently
// reshape the API.
type MemoryMetadataDTO struct {
	ID         string  `json:"id"`
	EntryID    string  `json:"entry_id"`
	Kind       string  `json:"kind"`
	Store      string  `json:"store"`
	Summary    string  `json:"summary"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Deleted    bool    `json:"deleted"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}
