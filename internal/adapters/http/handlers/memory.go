package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/longregen/slovo-agent/internal/adapters/http/dto"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

const defaultMemoryListLimit = 50

// MemoryHandler serves the /memory* inspector routes (spec §6) through the
// C7 memory manager facade.
type MemoryHandler struct {
	memory ports.MemoryManager
}

func NewMemoryHandler(memory ports.MemoryManager) *MemoryHandler {
	return &MemoryHandler{memory: memory}
}

func toMemoryMetadataDTO(m *models.MemoryMetadata) dto.MemoryMetadataDTO {
	return dto.MemoryMetadataDTO{
		ID:         m.ID,
		EntryID:    m.EntryID,
		Kind:       string(m.Kind),
		Store:      string(m.Store),
		Summary:    m.Summary,
		Source:     string(m.Source),
		Confidence: m.Confidence,
		Deleted:    m.Deleted,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  m.UpdatedAt.Format(time.RFC3339),
	}
}

// List handles GET /memory.
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.MemoryListFilter{
		Kind:           models.MemoryKind(q.Get("type")),
		Source:         models.MetadataSource(q.Get("source")),
		Limit:          parseIntQuery(r, "limit", defaultMemoryListLimit),
		Offset:         parseIntQuery(r, "offset", 0),
		IncludeDeleted: q.Get("include_deleted") == "true",
	}

	items, total, err := h.memory.List(r.Context(), filter)
	if err != nil {
		respondError(w, "memory_unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}

	out := make([]dto.MemoryMetadataDTO, len(items))
	for i, m := range items {
		out[i] = toMemoryMetadataDTO(m)
	}

	respondJSON(w, dto.MemoryListResponse{
		Items:  out,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, http.StatusOK)
}

// Get handles GET /memory/{id}.
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "memory id")
	if !ok {
		return
	}

	m, err := h.memory.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, "not_found", "memory record not found", http.StatusNotFound)
			return
		}
		respondError(w, "memory_unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, toMemoryMetadataDTO(m), http.StatusOK)
}

// Update handles PUT /memory/{id}.
func (h *MemoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "memory id")
	if !ok {
		return
	}

	req, ok := decodeJSON[dto.UpdateMemoryRequest](r, w)
	if !ok {
		return
	}

	err := h.memory.Update(r.Context(), id, ports.MemoryUpdate{
		Content:    req.Content,
		Confidence: req.Confidence,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, "not_found", "memory record not found", http.StatusNotFound)
			return
		}
		respondError(w, "memory_unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// Delete handles DELETE /memory/{id}.
func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "memory id")
	if !ok {
		return
	}

	req, ok := decodeJSON[dto.DeleteMemoryRequest](r, w)
	if !ok {
		return
	}
	if !req.Confirm {
		respondError(w, "invalid_request", "confirm must be true", http.StatusBadRequest)
		return
	}

	if err := h.memory.Delete(r.Context(), id); err != nil {
		respondError(w, "memory_unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// Reset handles POST /memory/reset.
func (h *MemoryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.ResetRequest](r, w)
	if !ok {
		return
	}
	if !req.ConfirmFullReset {
		respondError(w, "invalid_request", "confirm_full_reset must be true", http.StatusBadRequest)
		return
	}

	result, err := h.memory.FullReset(r.Context(), req.PreserveUserProfile)
	if err != nil {
		respondError(w, "memory_unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, result, http.StatusOK)
}

// GetProfile handles GET /memory/profile.
func (h *MemoryHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.memory.GetProfile(r.Context())
	if err != nil {
		respondError(w, "memory_unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, p, http.StatusOK)
}

// SetProfile handles PUT /memory/profile.
func (h *MemoryHandler) SetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeJSON[models.UserProfile](r, w)
	if !ok {
		return
	}

	if err := h.memory.SetProfile(r.Context(), p); err != nil {
		respondError(w, "memory_unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, p, http.StatusOK)
}

// Health handles GET /memory/health.
func (h *MemoryHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.memory.Health(r.Context())
	code := http.StatusOK
	if !(status.Ephemeral && status.Vector && status.Durable) {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, status, code)
}
