package memory

import (
	"context"
	"errors"
	"strings"

	idgen "github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/domain"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

const minWriteConfidence = 0.7

var errWriteNotApproved = errors.New("memory write not approved")

// Writer (C6) applies the three-gate approval — approved, confidence
// floor, memory_capture_enabled — before routing a WriteRequest to C3
// (semantic) or C4 (preference/episodic) by kind.
type Writer struct {
	vectors ports.VectorStore
	durable ports.DurableStore
	embed   ports.EmbeddingService
	ids     *idgen.Generator
}

func NewWriter(vectors ports.VectorStore, durable ports.DurableStore, embed ports.EmbeddingService) *Writer {
	return &Writer{vectors: vectors, durable: durable, embed: embed, ids: idgen.New()}
}

func (w *Writer) Write(ctx context.Context, req ports.WriteRequest, approval ports.VerifierApproval) (*ports.WriteResult, error) {
	if !approval.Approved {
		return &ports.WriteResult{Success: false, Error: errWriteNotApproved.Error(), VerifierApproved: false}, nil
	}
	confidence := req.Confidence
	if approval.Confidence < confidence {
		confidence = approval.Confidence
	}
	if confidence < minWriteConfidence {
		return &ports.WriteResult{Success: false, Error: "confidence below write threshold", VerifierApproved: true}, nil
	}

	profile, err := w.durable.Profiles().Get(ctx)
	if err != nil {
		return nil, err
	}
	if !profile.MemoryCaptureEnabled {
		return &ports.WriteResult{Success: false, Error: "memory capture disabled", VerifierApproved: true}, nil
	}

	content := req.Content
	if approval.AdjustedContent != "" {
		content = approval.AdjustedContent
	}
	req.Content = content
	req.Confidence = confidence

	return w.route(ctx, req)
}

// WriteWithoutApproval is the operator-inspector-only entry point (spec
// §4.5): it synthesises an always-approved VerifierApproval at the
// request's own confidence, bypassing the verifier gate but not the
// confidence floor or the memory_capture_enabled gate.
func (w *Writer) WriteWithoutApproval(ctx context.Context, req ports.WriteRequest) (*ports.WriteResult, error) {
	return w.Write(ctx, req, ports.VerifierApproval{Approved: true, Confidence: req.Confidence})
}

func (w *Writer) route(ctx context.Context, req ports.WriteRequest) (*ports.WriteResult, error) {
	switch req.Kind {
	case models.MemoryKindSemantic:
		return w.writeSemantic(ctx, req)
	case models.MemoryKindPreference:
		return w.writePreference(ctx, req)
	case models.MemoryKindEpisodic:
		return w.writeEpisodic(ctx, req)
	default:
		return &ports.WriteResult{Success: false, Error: "unknown memory kind"}, nil
	}
}

func (w *Writer) writeSemantic(ctx context.Context, req ports.WriteRequest) (*ports.WriteResult, error) {
	entry := models.NewSemanticEntry(w.ids.GenerateSemanticEntryID(), req.Content, string(req.Source))
	entry.ConversationID = req.ConversationID
	entry.Confidence = req.Confidence
	if toolName, ok := req.Metadata["tool_name"]; ok {
		entry.ToolName = toolName
	}

	if w.embed == nil || !w.embed.Configured() {
		return &ports.WriteResult{Success: false, Error: domain.ErrNoEmbeddingFunction.Error(), VerifierApproved: true}, nil
	}
	emb, err := w.embed.Embed(ctx, req.Content)
	if err != nil {
		return &ports.WriteResult{Success: false, Error: err.Error(), VerifierApproved: true}, nil
	}
	entry.Embedding = emb.Embedding

	if err := w.vectors.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	if err := w.indexMetadata(ctx, entry.ID, models.MemoryKindSemantic, models.StoreLocationVector, entry.Summary, req); err != nil {
		_ = w.vectors.Delete(ctx, entry.ID)
		return nil, err
	}
	return &ports.WriteResult{Success: true, MemoryID: entry.ID, VerifierApproved: true}, nil
}

func (w *Writer) writePreference(ctx context.Context, req ports.WriteRequest) (*ports.WriteResult, error) {
	key := req.Metadata["preference_key"]
	value := req.Content
	if key == "" {
		if k, v, ok := strings.Cut(req.Content, ":"); ok {
			key, value = strings.TrimSpace(k), strings.TrimSpace(v)
		}
	}
	if key == "" {
		return &ports.WriteResult{Success: false, Error: "preference write requires a key"}, nil
	}
	source := models.PreferenceSourceVerifierApprove
	if req.Source == models.MetadataSourceUserEdit {
		source = models.PreferenceSourceUserEdit
	}
	entry := models.NewPreferenceEntry(w.ids.GeneratePreferenceID(), key, value, source)
	entry.Confidence = req.Confidence

	if existing, err := w.durable.Preferences().GetByKey(ctx, key); err == nil && existing != nil {
		entry.ID = existing.ID
	}
	if err := w.durable.Preferences().Upsert(ctx, entry); err != nil {
		return nil, err
	}
	if err := w.indexMetadata(ctx, entry.ID, models.MemoryKindPreference, models.StoreLocationDurable, entry.Value, req); err != nil {
		return nil, err
	}
	return &ports.WriteResult{Success: true, MemoryID: entry.ID, VerifierApproved: true}, nil
}

func (w *Writer) writeEpisodic(ctx context.Context, req ports.WriteRequest) (*ports.WriteResult, error) {
	agent := req.Metadata["agent"]
	actionType := req.Metadata["action_type"]
	if actionType == "" {
		actionType = "memory_written"
	}
	entry := models.NewEpisodicEntry(w.ids.GenerateEpisodicEntryID(), agent, actionType, req.Content)
	entry.Confidence = req.Confidence
	entry.Metadata = models.EpisodicMetadata{
		ConversationID:   req.ConversationID,
		ToolName:         req.Metadata["tool_name"],
		ErrorCategory:    req.Metadata["error_category"],
		CorrectionReason: req.Metadata["correction_reason"],
	}

	if err := w.durable.Episodic().Append(ctx, entry); err != nil {
		return nil, err
	}
	if err := w.indexMetadata(ctx, entry.ID, models.MemoryKindEpisodic, models.StoreLocationDurable, entry.Summary, req); err != nil {
		return nil, err
	}
	return &ports.WriteResult{Success: true, MemoryID: entry.ID, VerifierApproved: true}, nil
}

func (w *Writer) indexMetadata(ctx context.Context, entryID string, kind models.MemoryKind, store models.StoreLocation, summary string, req ports.WriteRequest) error {
	meta := models.NewMemoryMetadata(w.ids.GenerateMemoryMetadataID(), entryID, kind, store, summary, req.Source, req.Confidence)
	return w.durable.Metadata().Insert(ctx, meta)
}
