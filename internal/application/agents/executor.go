package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

const executorMemoryTokenBudget = 1500

// ExecutorAgent walks an ExecutionPlan's steps in index order, threading
// each step's output into the context available to subsequent steps.
type ExecutorAgent struct {
	llm ports.LLMService
}

func NewExecutorAgent(llm ports.LLMService) *ExecutorAgent {
	return &ExecutorAgent{llm: llm}
}

func (a *ExecutorAgent) Run(ctx context.Context, plan *models.ExecutionPlan, deps ports.ExecutorStepDeps) (*models.ExecutionResult, error) {
	result := models.NewExecutionResult(plan)
	accumulated := make(map[int]string)

	for _, step := range plan.Steps {
		sr := a.runStep(ctx, step, plan, deps, accumulated)
		result.AddStepResult(sr)
		if sr.Success {
			if out, ok := sr.Output.(string); ok {
				accumulated[step.Index] = out
			}
		} else {
			break
		}
	}

	return result, nil
}

func (a *ExecutorAgent) runStep(ctx context.Context, step *models.PlanStep, plan *models.ExecutionPlan, deps ports.ExecutorStepDeps, accumulated map[int]string) *models.StepResult {
	switch step.Type {
	case models.StepMemoryRetrieval:
		return a.runMemoryRetrieval(ctx, step, plan, deps)
	case models.StepToolExecution:
		return a.runToolExecution(ctx, step, plan, deps)
	case models.StepToolDiscovery:
		return a.runToolDiscovery(ctx, step, plan, deps)
	case models.StepLLMResponse:
		return a.runLLMResponse(ctx, step, plan, deps, accumulated)
	case models.StepClarification:
		return &models.StepResult{StepIndex: step.Index, Success: true, Output: "clarification required"}
	default:
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: fmt.Sprintf("unknown step type %q", step.Type)}
	}
}

func (a *ExecutorAgent) runMemoryRetrieval(ctx context.Context, step *models.PlanStep, plan *models.ExecutionPlan, deps ports.ExecutorStepDeps) *models.StepResult {
	if deps.Retrieval == nil {
		return &models.StepResult{StepIndex: step.Index, Success: true, Output: ""}
	}
	memCtx, err := deps.Retrieval.Retrieve(ctx, ports.RetrievalRequest{
		UserMessage: plan.Intent.Text,
		TokenLimit:  executorMemoryTokenBudget,
	})
	if err != nil {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: err.Error()}
	}
	summary := memCtx.ProfileSummary + memCtx.ConversationSummary + memCtx.SemanticSummary + memCtx.EpisodicSummary
	return &models.StepResult{StepIndex: step.Index, Success: true, Output: summary}
}

func (a *ExecutorAgent) runToolExecution(ctx context.Context, step *models.PlanStep, plan *models.ExecutionPlan, deps ports.ExecutorStepDeps) *models.StepResult {
	if deps.Tools == nil || deps.Sandbox == nil {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: "tool execution unavailable"}
	}

	manifest, err := deps.Tools.GetManifestByName(ctx, step.ToolName)
	if err != nil {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: fmt.Sprintf("tool %q not found: %v", step.ToolName, err)}
	}
	if !manifest.Executable() {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: fmt.Sprintf("tool %q is not in an executable state (%s)", step.ToolName, manifest.Status)}
	}

	log, err := deps.Tools.StartExecution(ctx, manifest.ID, "", step.Parameters)
	if err != nil {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: err.Error()}
	}

	perms, err := deps.Tools.ListPermissions(ctx, manifest.ID)
	if err != nil {
		perms = nil
	}

	started := time.Now()
	if err := deps.Sandbox.Execute(ctx, manifest, perms, step.Parameters, log); err != nil {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: err.Error()}
	}
	duration := time.Since(started)

	if err := deps.Tools.CompleteExecution(ctx, log); err != nil {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: err.Error()}
	}

	if log.Status != models.ExecutionSuccess {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: log.Error, Output: fmt.Sprintf("execution_log=%s duration=%s", log.ID, duration)}
	}
	return &models.StepResult{StepIndex: step.Index, Success: true, Output: log.Output}
}

func (a *ExecutorAgent) runToolDiscovery(ctx context.Context, step *models.PlanStep, plan *models.ExecutionPlan, deps ports.ExecutorStepDeps) *models.StepResult {
	if deps.Discovery == nil {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: "tool discovery unavailable"}
	}
	req, err := deps.Discovery.RequestCapability(ctx, step.Description, "executor")
	if err != nil {
		return &models.StepResult{StepIndex: step.Index, Success: false, Error: err.Error()}
	}
	return &models.StepResult{StepIndex: step.Index, Success: true, Output: req.ID}
}

func (a *ExecutorAgent) runLLMResponse(ctx context.Context, step *models.PlanStep, plan *models.ExecutionPlan, deps ports.ExecutorStepDeps, accumulated map[int]string) *models.StepResult {
	if a.llm == nil || !a.llm.Configured() {
		return &models.StepResult{StepIndex: step.Index, Success: true, Output: fallbackEcho(plan.Intent.Text)}
	}

	var parts []string
	for _, dep := range step.Dependencies {
		if out, ok := accumulated[dep]; ok && out != "" {
			parts = append(parts, out)
		}
	}
	if deps.MemoryCtx != nil {
		summary := deps.MemoryCtx.ProfileSummary + deps.MemoryCtx.ConversationSummary + deps.MemoryCtx.SemanticSummary + deps.MemoryCtx.EpisodicSummary
		if summary != "" {
			parts = append([]string{summary}, parts...)
		}
	}

	messages := []ports.LLMMessage{
		{Role: "system", Content: "Context:\n" + strings.Join(parts, "\n")},
		{Role: "user", Content: plan.Intent.Text},
	}
	resp, err := a.llm.Chat(ctx, messages)
	if err != nil || resp == nil || resp.Content == "" {
		return &models.StepResult{StepIndex: step.Index, Success: true, Output: fallbackEcho(plan.Intent.Text)}
	}
	return &models.StepResult{StepIndex: step.Index, Success: true, Output: resp.Content}
}

// fallbackEcho is the static-paragraph fallback used when no model is
// configured: a truncated echo of the intent's text.
func fallbackEcho(text string) string {
	const maxLen = 120
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > maxLen {
		trimmed = trimmed[:maxLen] + "..."
	}
	return fmt.Sprintf("I heard: %q. I don't have a language model configured to respond further.", trimmed)
}

var _ ports.ExecutorAgent = (*ExecutorAgent)(nil)
