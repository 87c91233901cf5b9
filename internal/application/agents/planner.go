package agents

import (
	"fmt"
	"strings"

	"context"

	idgen "github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

// clarificationTriggers is a fixed lexicon of ambiguity markers; when the
// model is not configured, an utterance containing one of these and
// lacking a resolvable tool hint is routed to a clarification step.
var clarificationTriggers = []string{"which one", "what do you mean", "not sure what", "could be either"}

// PlannerAgent turns an Intent into an ExecutionPlan, via the model when
// configured and via a fixed step template otherwise.
type PlannerAgent struct {
	llm ports.LLMService
	ids *idgen.Generator
}

func NewPlannerAgent(llm ports.LLMService) *PlannerAgent {
	return &PlannerAgent{llm: llm, ids: idgen.New()}
}

func (a *PlannerAgent) Run(ctx context.Context, intent *models.Intent) (*models.ExecutionPlan, error) {
	plan := models.NewExecutionPlan(a.ids.GeneratePlanID(), intent)

	if a.llm != nil && a.llm.Configured() {
		if a.planWithModel(ctx, plan) {
			a.finalizeFlags(plan)
			return plan, nil
		}
	}

	a.planHeuristically(plan)
	a.finalizeFlags(plan)
	return plan, nil
}

// planWithModel asks the model to confirm whether the heuristic template
// needs a clarification step instead; any failure leaves plan untouched
// and returns false so the caller falls back to the deterministic template.
func (a *PlannerAgent) planWithModel(ctx context.Context, plan *models.ExecutionPlan) bool {
	resp, err := a.llm.StructuredChat(ctx, []ports.LLMMessage{
		{Role: "user", Content: "Does this request need clarification before it can be planned? " + plan.Intent.Text},
	}, "{\"needs_clarification\": true|false}")
	if err != nil || resp == nil || resp.Content == "" {
		return false
	}
	if strings.Contains(strings.ToLower(resp.Content), "true") {
		plan.Steps = append(plan.Steps, &models.PlanStep{
			Index:       0,
			Type:        models.StepClarification,
			Description: "request is ambiguous, ask the user to clarify",
		})
		return true
	}
	a.buildTemplate(plan)
	return true
}

// planHeuristically implements spec's fallback template for a non-trivial
// intent: [memory_retrieval, (tool_execution|tool_discovery), llm_response],
// with every predecessor wired as a dependency of the final llm_response
// step. Trivial (conversational, non-tool) intents still get the template
// since the orchestrator only calls the planner past the fast-path gate.
func (a *PlannerAgent) planHeuristically(plan *models.ExecutionPlan) {
	lower := strings.ToLower(plan.Intent.Text)
	if containsAny(lower, clarificationTriggers) && plan.Intent.ToolHint == "" {
		plan.Steps = append(plan.Steps, &models.PlanStep{
			Index:       0,
			Type:        models.StepClarification,
			Description: "request is ambiguous, ask the user to clarify",
		})
		return
	}
	a.buildTemplate(plan)
}

func (a *PlannerAgent) buildTemplate(plan *models.ExecutionPlan) {
	steps := []*models.PlanStep{
		{Index: 0, Type: models.StepMemoryRetrieval, Description: "retrieve relevant memory context"},
	}

	if plan.Intent.RequiresTool {
		if plan.Intent.ToolHint != "" {
			steps = append(steps, &models.PlanStep{
				Index:       1,
				Type:        models.StepToolExecution,
				Description: fmt.Sprintf("execute tool %q", plan.Intent.ToolHint),
				ToolName:    plan.Intent.ToolHint,
			})
		} else {
			steps = append(steps, &models.PlanStep{
				Index:       1,
				Type:        models.StepToolDiscovery,
				Description: "discover a tool capable of handling this request",
			})
		}
	}

	final := &models.PlanStep{
		Index:       len(steps),
		Type:        models.StepLLMResponse,
		Description: "compose the final response",
	}
	for _, s := range steps {
		final.Dependencies = append(final.Dependencies, s.Index)
	}
	steps = append(steps, final)

	plan.Steps = steps
}

func (a *PlannerAgent) finalizeFlags(plan *models.ExecutionPlan) {
	plan.RequiresApproval = plan.HasToolStep()
	if plan.HasClarificationStep() {
		plan.RequiresVerification = false
		plan.RequiresExplanation = false
	}
}

var _ ports.PlannerAgent = (*PlannerAgent)(nil)
