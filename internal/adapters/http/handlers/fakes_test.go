package handlers

import (
	"context"
	"errors"

	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

// errTest is a generic sentinel used across handler tests to simulate a
// downstream failure without asserting on a specific error value.
var errTest = errors.New("test error")

// fakeOrchestrator is a minimal ports.Orchestrator double for handler tests.
type fakeOrchestrator struct {
	result *ports.Result
	err    error
	gotText           string
	gotConversationID string
}

func (f *fakeOrchestrator) ProcessMessage(ctx context.Context, text, conversationID string) (*ports.Result, error) {
	f.gotText = text
	f.gotConversationID = conversationID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeMemoryManager is a minimal ports.MemoryManager double for handler tests.
type fakeMemoryManager struct {
	turns   []models.ConversationTurn
	turnErr error

	listItems []*models.MemoryMetadata
	listTotal int
	listErr   error

	getItem *models.MemoryMetadata
	getErr  error

	updateErr error
	deleteErr error

	resetResult ports.ResetResult
	resetErr    error

	profile    *models.UserProfile
	profileErr error

	health ports.HealthStatus
}

func (f *fakeMemoryManager) Retrieve(ctx context.Context, req ports.RetrievalRequest) (*ports.MemoryContext, error) {
	return &ports.MemoryContext{}, nil
}

func (f *fakeMemoryManager) StoreTurn(ctx context.Context, conversationID string, turn models.ConversationTurn) error {
	return nil
}

func (f *fakeMemoryManager) GetRecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	return f.turns, nil
}

func (f *fakeMemoryManager) WriteMemory(ctx context.Context, req ports.WriteRequest, approval ports.VerifierApproval) (*ports.WriteResult, error) {
	return &ports.WriteResult{}, nil
}

func (f *fakeMemoryManager) WriteMemoryDirect(ctx context.Context, req ports.WriteRequest) (*ports.WriteResult, error) {
	return &ports.WriteResult{}, nil
}

func (f *fakeMemoryManager) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeMemoryManager) SetProfile(ctx context.Context, p *models.UserProfile) error {
	f.profile = p
	return f.profileErr
}

func (f *fakeMemoryManager) List(ctx context.Context, filter ports.MemoryListFilter) ([]*models.MemoryMetadata, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listItems, f.listTotal, nil
}

func (f *fakeMemoryManager) Get(ctx context.Context, memoryID string) (*models.MemoryMetadata, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getItem, nil
}

func (f *fakeMemoryManager) Update(ctx context.Context, memoryID string, upd ports.MemoryUpdate) error {
	return f.updateErr
}

func (f *fakeMemoryManager) Delete(ctx context.Context, memoryID string) error {
	return f.deleteErr
}

func (f *fakeMemoryManager) FullReset(ctx context.Context, preserveProfile bool) (ports.ResetResult, error) {
	if f.resetErr != nil {
		return ports.ResetResult{}, f.resetErr
	}
	return f.resetResult, nil
}

func (f *fakeMemoryManager) Health(ctx context.Context) ports.HealthStatus {
	return f.health
}

// fakeIDGenerator is a minimal ports.IDGenerator double for handler tests.
type fakeIDGenerator struct{}

func (fakeIDGenerator) GenerateConversationID() string    { return "conv_test" }
func (fakeIDGenerator) GenerateIntentID() string           { return "intent_test" }
func (fakeIDGenerator) GeneratePlanID() string              { return "plan_test" }
func (fakeIDGenerator) GenerateVerificationID() string      { return "verif_test" }
func (fakeIDGenerator) GenerateSemanticEntryID() string     { return "sem_test" }
func (fakeIDGenerator) GenerateEpisodicEntryID() string     { return "epi_test" }
func (fakeIDGenerator) GeneratePreferenceID() string        { return "pref_test" }
func (fakeIDGenerator) GenerateMemoryMetadataID() string    { return "meta_test" }
func (fakeIDGenerator) GenerateUserProfileID() string       { return "profile_test" }
func (fakeIDGenerator) GenerateSessionContextID() string    { return "sess_test" }
func (fakeIDGenerator) GenerateManifestID() string          { return "manifest_test" }
func (fakeIDGenerator) GeneratePermissionID() string        { return "perm_test" }
func (fakeIDGenerator) GenerateExecutionLogID() string      { return "exec_test" }
func (fakeIDGenerator) GenerateVolumeID() string            { return "vol_test" }
func (fakeIDGenerator) GenerateDiscoveryRequestID() string  { return "disc_test" }
func (fakeIDGenerator) GenerateToolStateID() string         { return "state_test" }
func (fakeIDGenerator) GenerateResponseID() string          { return "ares_test" }
