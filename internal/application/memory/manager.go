package memory

import (
	"context"
	"errors"

	idgen "github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

// Manager (C7) is the facade the orchestrator (C12) talks to: it
// aggregates the retrieval pipeline (C5), the writer (C6), and direct
// C2/C3/C4 access for turn storage, profile management, the inspector,
// full reset, and health.
type Manager struct {
	ephemeral ports.EphemeralStore
	vectors   ports.VectorStore
	durable   ports.DurableStore
	retrieval *RetrievalPipeline
	writer    *Writer
	ids       *idgen.Generator
}

func NewManager(ephemeral ports.EphemeralStore, vectors ports.VectorStore, durable ports.DurableStore, embed ports.EmbeddingService) *Manager {
	return &Manager{
		ephemeral: ephemeral,
		vectors:   vectors,
		durable:   durable,
		retrieval: NewRetrievalPipeline(ephemeral, vectors, durable, embed),
		writer:    NewWriter(vectors, durable, embed),
		ids:       idgen.New(),
	}
}

func (m *Manager) Retrieve(ctx context.Context, req ports.RetrievalRequest) (*ports.MemoryContext, error) {
	return m.retrieval.Retrieve(ctx, req)
}

func (m *Manager) StoreTurn(ctx context.Context, conversationID string, turn models.ConversationTurn) error {
	return m.ephemeral.AppendTurn(ctx, conversationID, turn)
}

func (m *Manager) GetRecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	return m.ephemeral.GetTurns(ctx, conversationID, limit)
}

func (m *Manager) WriteMemory(ctx context.Context, req ports.WriteRequest, approval ports.VerifierApproval) (*ports.WriteResult, error) {
	return m.writer.Write(ctx, req, approval)
}

func (m *Manager) WriteMemoryDirect(ctx context.Context, req ports.WriteRequest) (*ports.WriteResult, error) {
	return m.writer.WriteWithoutApproval(ctx, req)
}

func (m *Manager) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	return m.durable.Profiles().Get(ctx)
}

func (m *Manager) SetProfile(ctx context.Context, p *models.UserProfile) error {
	return m.durable.Profiles().Upsert(ctx, p)
}

func (m *Manager) List(ctx context.Context, filter ports.MemoryListFilter) ([]*models.MemoryMetadata, int, error) {
	return m.durable.Metadata().List(ctx, filter.Kind, filter.Source, filter.IncludeDeleted, filter.Limit, filter.Offset)
}

func (m *Manager) Get(ctx context.Context, memoryID string) (*models.MemoryMetadata, error) {
	return m.durable.Metadata().GetByEntryID(ctx, memoryID)
}

// Update applies an inspector-driven patch to a memory's metadata row and,
// when the entry lives in the vector store, to the underlying semantic
// entry as well (spec §4.4: edits must stay consistent across both).
func (m *Manager) Update(ctx context.Context, memoryID string, upd ports.MemoryUpdate) error {
	meta, err := m.durable.Metadata().GetByEntryID(ctx, memoryID)
	if err != nil {
		return err
	}
	if upd.Content != nil {
		meta.Summary = *upd.Content
	}
	if upd.Confidence != nil {
		meta.Confidence = *upd.Confidence
	}
	if err := m.durable.Metadata().Update(ctx, meta); err != nil {
		return err
	}
	if meta.Store == models.StoreLocationVector {
		return m.vectors.Update(ctx, memoryID, upd.Content, upd.Confidence)
	}
	return nil
}

// Delete soft-deletes the metadata index row and, for an entry that lives
// in the vector store, removes it from the vector store as well.
// Preference and episodic rows in the durable store are left in place;
// only their metadata row is marked deleted.
func (m *Manager) Delete(ctx context.Context, memoryID string) error {
	meta, err := m.durable.Metadata().GetByEntryID(ctx, memoryID)
	if err != nil {
		return err
	}
	if err := m.durable.Metadata().SoftDelete(ctx, memoryID); err != nil {
		return err
	}
	if meta.Store == models.StoreLocationVector {
		return m.vectors.Delete(ctx, memoryID)
	}
	return nil
}

func (m *Manager) FullReset(ctx context.Context, preserveProfile bool) (ports.ResetResult, error) {
	var result ports.ResetResult
	var errs []error
	if err := m.ephemeral.ResetAll(ctx); err != nil {
		errs = append(errs, err)
	} else {
		result.Ephemeral = true
	}

	if err := m.vectors.ClearAll(ctx); err != nil {
		errs = append(errs, err)
	} else {
		result.Vector = true
	}

	if err := m.durable.ClearAll(ctx, preserveProfile); err != nil {
		errs = append(errs, err)
	} else {
		result.Durable = true
	}

	return result, errors.Join(errs...)
}

// Health probes each store with a lightweight call; a store that errors
// is reported down rather than aborting the whole health check.
func (m *Manager) Health(ctx context.Context) ports.HealthStatus {
	var status ports.HealthStatus

	if _, err := m.ephemeral.GetTurns(ctx, "__health__", 1); err == nil {
		status.Ephemeral = true
	}
	if _, _, err := m.vectors.Scroll(ctx, 0, 1); err == nil {
		status.Vector = true
	}
	if _, err := m.durable.Profiles().Get(ctx); err == nil {
		status.Durable = true
	}

	return status
}

var _ ports.MemoryManager = (*Manager)(nil)
