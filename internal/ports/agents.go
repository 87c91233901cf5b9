package ports

import (
	"context"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// IntentAgent classifies a single utterance.
type IntentAgent interface {
	Run(ctx context.Context, text string) (*models.Intent, error)
}

// PlannerAgent turns an Intent into an ExecutionPlan.
type PlannerAgent interface {
	Run(ctx context.Context, intent *models.Intent) (*models.ExecutionPlan, error)
}

// ExecutorStepDeps are the collaborators the executor agent needs to carry
// out a plan step, passed in rather than held, so the agent stays a pure
// typed-call-plus-fallback envelope per spec §4.10.
type ExecutorStepDeps struct {
	Retrieval    RetrievalPipeline
	Tools        ToolRepositoryService
	Sandbox      SandboxExecutor
	Discovery    ToolDiscoveryService
	MemoryCtx    *MemoryContext
}

// ExecutorAgent walks an ExecutionPlan's steps in order.
type ExecutorAgent interface {
	Run(ctx context.Context, plan *models.ExecutionPlan, deps ExecutorStepDeps) (*models.ExecutionResult, error)
}

// VerifierAgent judges an ExecutionResult.
type VerifierAgent interface {
	Run(ctx context.Context, result *models.ExecutionResult) (*models.Verification, error)
}

// ExplainerAgent turns an ExecutionResult + Verification into a
// user-facing response.
type ExplainerAgent interface {
	Run(ctx context.Context, result *models.ExecutionResult, verification *models.Verification) (response, reasoning, confidenceNote string, err error)
}
