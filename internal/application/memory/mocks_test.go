package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

// ============================================================================
// In-package fakes shared across the memory package's tests.
// ============================================================================

type fakeEphemeralStore struct {
	mu    sync.RWMutex
	turns map[string][]models.ConversationTurn
	ctx   map[string]*models.SessionContext
	tools map[string]map[string]any
}

func newFakeEphemeralStore() *fakeEphemeralStore {
	return &fakeEphemeralStore{
		turns: make(map[string][]models.ConversationTurn),
		ctx:   make(map[string]*models.SessionContext),
		tools: make(map[string]map[string]any),
	}
}

func (f *fakeEphemeralStore) AppendTurn(_ context.Context, conversationID string, turn models.ConversationTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns[conversationID] = append(f.turns[conversationID], turn)
	return nil
}

func (f *fakeEphemeralStore) GetTurns(_ context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	turns := f.turns[conversationID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (f *fakeEphemeralStore) ClearTurns(_ context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.turns, conversationID)
	return nil
}

func (f *fakeEphemeralStore) GetSessionContext(_ context.Context, sessionID string) (*models.SessionContext, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ctx[sessionID], nil
}

func (f *fakeEphemeralStore) SetSessionContext(_ context.Context, sc *models.SessionContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctx[sc.SessionID] = sc
	return nil
}

func (f *fakeEphemeralStore) GetToolOutput(_ context.Context, sessionID, toolName string) (any, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.tools[sessionID]
	if !ok {
		return nil, false, nil
	}
	v, ok := m[toolName]
	return v, ok, nil
}

func (f *fakeEphemeralStore) SetToolOutput(_ context.Context, sessionID, toolName string, output any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tools[sessionID] == nil {
		f.tools[sessionID] = make(map[string]any)
	}
	f.tools[sessionID][toolName] = output
	return nil
}

func (f *fakeEphemeralStore) ScanToolOutputs(_ context.Context, sessionID string) (map[string]any, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]any)
	for k, v := range f.tools[sessionID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeEphemeralStore) ResetAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = make(map[string][]models.ConversationTurn)
	f.ctx = make(map[string]*models.SessionContext)
	f.tools = make(map[string]map[string]any)
	return nil
}

type fakeVectorStore struct {
	mu      sync.RWMutex
	entries map[string]*models.SemanticEntry
	results []ports.VectorSearchResult
	failGet bool
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{entries: make(map[string]*models.SemanticEntry)}
}

func (f *fakeVectorStore) Upsert(_ context.Context, entry *models.SemanticEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeVectorStore) Search(_ context.Context, _ []float32, _ ports.VectorSearchOptions) ([]ports.VectorSearchResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.results, nil
}

func (f *fakeVectorStore) Get(_ context.Context, id string) (*models.SemanticEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.failGet {
		return nil, errors.New("not found")
	}
	e, ok := f.entries[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (f *fakeVectorStore) Update(_ context.Context, id string, summary *string, confidence *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return errors.New("not found")
	}
	if summary != nil {
		e.Summary = *summary
	}
	if confidence != nil {
		e.Confidence = *confidence
	}
	return nil
}

func (f *fakeVectorStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, id)
	return nil
}

func (f *fakeVectorStore) Scroll(_ context.Context, offset, limit int) ([]*models.SemanticEntry, int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*models.SemanticEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeVectorStore) ClearAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string]*models.SemanticEntry)
	return nil
}

type fakeEmbeddingService struct {
	dims        int
	configured  bool
	embedErr    error
	fixedVector []float32
}

func newFakeEmbeddingService() *fakeEmbeddingService {
	return &fakeEmbeddingService{dims: 8, configured: true, fixedVector: make([]float32, 8)}
}

func (f *fakeEmbeddingService) Embed(_ context.Context, text string) (*ports.EmbeddingResult, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return &ports.EmbeddingResult{Embedding: f.fixedVector, Model: "fake", Dimensions: f.dims}, nil
}

func (f *fakeEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([]*ports.EmbeddingResult, error) {
	out := make([]*ports.EmbeddingResult, len(texts))
	for i := range texts {
		r, err := f.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (f *fakeEmbeddingService) GetDimensions() int { return f.dims }
func (f *fakeEmbeddingService) Configured() bool   { return f.configured }

// fakeDurableStore implements ports.DurableStore by delegating every
// accessor to an in-memory struct; only the methods exercised by C5/C6/C7
// tests carry real state.
type fakeDurableStore struct {
	profile     *models.UserProfile
	profileErr  error
	preferences map[string]*models.PreferenceEntry
	episodic    []*models.EpisodicEntry
	metadata    map[string]*models.MemoryMetadata
	metadataErr error
}

func newFakeDurableStore() *fakeDurableStore {
	return &fakeDurableStore{
		profile:     models.DefaultUserProfile(),
		preferences: make(map[string]*models.PreferenceEntry),
		metadata:    make(map[string]*models.MemoryMetadata),
	}
}

func (f *fakeDurableStore) Profiles() ports.UserProfileRepository       { return fakeProfileRepo{f} }
func (f *fakeDurableStore) Preferences() ports.UserPreferenceRepository { return fakePreferenceRepo{f} }
func (f *fakeDurableStore) Episodic() ports.EpisodicLogRepository      { return fakeEpisodicRepo{f} }
func (f *fakeDurableStore) Metadata() ports.MemoryMetadataRepository   { return fakeMetadataRepo{f} }
func (f *fakeDurableStore) Manifests() ports.ManifestRepository        { return nil }
func (f *fakeDurableStore) Permissions() ports.PermissionRepository    { return nil }
func (f *fakeDurableStore) Executions() ports.ExecutionLogRepository   { return nil }
func (f *fakeDurableStore) Volumes() ports.VolumeRepository            { return nil }
func (f *fakeDurableStore) Discovery() ports.DiscoveryQueueRepository  { return nil }
func (f *fakeDurableStore) ToolStates() ports.ToolStateRepository      { return nil }

func (f *fakeDurableStore) ClearAll(_ context.Context, preserveProfile bool) error {
	f.preferences = make(map[string]*models.PreferenceEntry)
	f.episodic = nil
	f.metadata = make(map[string]*models.MemoryMetadata)
	if preserveProfile {
		f.profile = models.DefaultUserProfile()
	} else {
		f.profile = nil
	}
	return nil
}

type fakeProfileRepo struct{ s *fakeDurableStore }

func (r fakeProfileRepo) Get(_ context.Context) (*models.UserProfile, error) {
	if r.s.profileErr != nil {
		return nil, r.s.profileErr
	}
	if r.s.profile == nil {
		r.s.profile = models.DefaultUserProfile()
	}
	return r.s.profile, nil
}

func (r fakeProfileRepo) Upsert(_ context.Context, p *models.UserProfile) error {
	r.s.profile = p
	return nil
}

type fakePreferenceRepo struct{ s *fakeDurableStore }

func (r fakePreferenceRepo) Upsert(_ context.Context, p *models.PreferenceEntry) error {
	r.s.preferences[p.Key] = p
	return nil
}

func (r fakePreferenceRepo) GetByKey(_ context.Context, key string) (*models.PreferenceEntry, error) {
	p, ok := r.s.preferences[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r fakePreferenceRepo) Delete(_ context.Context, key string) error {
	delete(r.s.preferences, key)
	return nil
}

func (r fakePreferenceRepo) List(_ context.Context, limit, offset int) ([]*models.PreferenceEntry, error) {
	out := make([]*models.PreferenceEntry, 0, len(r.s.preferences))
	for _, p := range r.s.preferences {
		out = append(out, p)
	}
	return out, nil
}

type fakeEpisodicRepo struct{ s *fakeDurableStore }

func (r fakeEpisodicRepo) Append(_ context.Context, e *models.EpisodicEntry) error {
	r.s.episodic = append(r.s.episodic, e)
	return nil
}

func (r fakeEpisodicRepo) Recent(_ context.Context, limit int) ([]*models.EpisodicEntry, error) {
	if limit <= 0 || limit > len(r.s.episodic) {
		limit = len(r.s.episodic)
	}
	return r.s.episodic[:limit], nil
}

func (r fakeEpisodicRepo) Get(_ context.Context, id string) (*models.EpisodicEntry, error) {
	for _, e := range r.s.episodic {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

type fakeMetadataRepo struct{ s *fakeDurableStore }

func (r fakeMetadataRepo) Insert(_ context.Context, m *models.MemoryMetadata) error {
	if r.s.metadataErr != nil {
		return r.s.metadataErr
	}
	r.s.metadata[m.EntryID] = m
	return nil
}

func (r fakeMetadataRepo) GetByEntryID(_ context.Context, entryID string) (*models.MemoryMetadata, error) {
	m, ok := r.s.metadata[entryID]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (r fakeMetadataRepo) Update(_ context.Context, m *models.MemoryMetadata) error {
	r.s.metadata[m.EntryID] = m
	return nil
}

func (r fakeMetadataRepo) SoftDelete(_ context.Context, entryID string) error {
	m, ok := r.s.metadata[entryID]
	if !ok {
		return errors.New("not found")
	}
	m.SoftDelete()
	return nil
}

func (r fakeMetadataRepo) Delete(_ context.Context, entryID string) error {
	delete(r.s.metadata, entryID)
	return nil
}

func (r fakeMetadataRepo) List(_ context.Context, kind models.MemoryKind, source models.MetadataSource, includeDeleted bool, limit, offset int) ([]*models.MemoryMetadata, int, error) {
	var out []*models.MemoryMetadata
	for _, m := range r.s.metadata {
		if !includeDeleted && m.Deleted {
			continue
		}
		if kind != "" && m.Kind != kind {
			continue
		}
		if source != "" && m.Source != source {
			continue
		}
		out = append(out, m)
	}
	return out, len(out), nil
}
