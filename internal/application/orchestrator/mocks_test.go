package orchestrator

import (
	"context"

	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

type fakeIntentAgent struct {
	intentType   models.IntentType
	requiresTool bool
}

func (f *fakeIntentAgent) Run(ctx context.Context, text string) (*models.Intent, error) {
	i := models.NewIntent("ai_test", text, f.intentType)
	i.RequiresTool = f.requiresTool
	return i, nil
}

type fakePlannerAgent struct {
	plan *models.ExecutionPlan
}

func (f *fakePlannerAgent) Run(ctx context.Context, intent *models.Intent) (*models.ExecutionPlan, error) {
	if f.plan != nil {
		return f.plan, nil
	}
	plan := models.NewExecutionPlan("apl_test", intent)
	plan.Steps = []*models.PlanStep{{Index: 0, Type: models.StepLLMResponse}}
	return plan, nil
}

type fakeExecutorAgent struct {
	output  string
	success bool
	err     error
}

func (f *fakeExecutorAgent) Run(ctx context.Context, plan *models.ExecutionPlan, deps ports.ExecutorStepDeps) (*models.ExecutionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := models.NewExecutionResult(plan)
	result.AddStepResult(&models.StepResult{StepIndex: 0, Success: f.success, Output: f.output})
	return result, nil
}

type fakeVerifierAgent struct {
	verification *models.Verification
}

func (f *fakeVerifierAgent) Run(ctx context.Context, result *models.ExecutionResult) (*models.Verification, error) {
	if f.verification != nil {
		return f.verification, nil
	}
	v := models.NewVerification()
	v.Finalize()
	return v, nil
}

type fakeExplainerAgent struct {
	response string
}

func (f *fakeExplainerAgent) Run(ctx context.Context, result *models.ExecutionResult, verification *models.Verification) (string, string, string, error) {
	if f.response != "" {
		return f.response, "explained", "", nil
	}
	return result.FinalOutput, "explained", "", nil
}

type fakeMemoryManager struct {
	turns []models.ConversationTurn
	ctx   *ports.MemoryContext
}

func (f *fakeMemoryManager) Retrieve(ctx context.Context, req ports.RetrievalRequest) (*ports.MemoryContext, error) {
	return f.ctx, nil
}
func (f *fakeMemoryManager) StoreTurn(ctx context.Context, conversationID string, turn models.ConversationTurn) error {
	f.turns = append(f.turns, turn)
	return nil
}
func (f *fakeMemoryManager) GetRecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	return f.turns, nil
}
func (f *fakeMemoryManager) WriteMemory(ctx context.Context, req ports.WriteRequest, approval ports.VerifierApproval) (*ports.WriteResult, error) {
	return &ports.WriteResult{Success: true}, nil
}
func (f *fakeMemoryManager) WriteMemoryDirect(ctx context.Context, req ports.WriteRequest) (*ports.WriteResult, error) {
	return &ports.WriteResult{Success: true}, nil
}
func (f *fakeMemoryManager) GetProfile(ctx context.Context) (*models.UserProfile, error) { return nil, nil }
func (f *fakeMemoryManager) SetProfile(ctx context.Context, p *models.UserProfile) error  { return nil }
func (f *fakeMemoryManager) List(ctx context.Context, filter ports.MemoryListFilter) ([]*models.MemoryMetadata, int, error) {
	return nil, 0, nil
}
func (f *fakeMemoryManager) Get(ctx context.Context, memoryID string) (*models.MemoryMetadata, error) {
	return nil, nil
}
func (f *fakeMemoryManager) Update(ctx context.Context, memoryID string, upd ports.MemoryUpdate) error {
	return nil
}
func (f *fakeMemoryManager) Delete(ctx context.Context, memoryID string) error { return nil }
func (f *fakeMemoryManager) FullReset(ctx context.Context, preserveProfile bool) (ports.ResetResult, error) {
	return ports.ResetResult{}, nil
}
func (f *fakeMemoryManager) Health(ctx context.Context) ports.HealthStatus {
	return ports.HealthStatus{}
}

var _ ports.IntentAgent = (*fakeIntentAgent)(nil)
var _ ports.PlannerAgent = (*fakePlannerAgent)(nil)
var _ ports.ExecutorAgent = (*fakeExecutorAgent)(nil)
var _ ports.VerifierAgent = (*fakeVerifierAgent)(nil)
var _ ports.ExplainerAgent = (*fakeExplainerAgent)(nil)
var _ ports.MemoryManager = (*fakeMemoryManager)(nil)
