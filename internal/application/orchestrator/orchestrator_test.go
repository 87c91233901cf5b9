package orchestrator

import (
	"context"
	"testing"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

func newTestOrchestrator(intentType models.IntentType, requiresTool bool) (*Orchestrator, *fakeMemoryManager) {
	mem := &fakeMemoryManager{}
	o := New(
		&fakeIntentAgent{intentType: intentType, requiresTool: requiresTool},
		&fakePlannerAgent{},
		&fakeExecutorAgent{output: "the answer", success: true},
		&fakeVerifierAgent{},
		&fakeExplainerAgent{},
		Deps{Memory: mem},
	)
	return o, mem
}

func TestProcessMessage_FastPathOnConversation(t *testing.T) {
	o, mem := newTestOrchestrator(models.IntentConversation, false)
	result, err := o.ProcessMessage(context.Background(), "thanks a lot", "conv_1")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if result.Confidence != 1.0 {
		t.Errorf("expected fixed confidence 1.0 on the fast path, got %f", result.Confidence)
	}
	if result.Reasoning != "Simple conversational response" {
		t.Errorf("expected fixed fast-path reasoning, got %q", result.Reasoning)
	}
	if len(mem.turns) != 2 {
		t.Errorf("expected a user turn and an assistant turn written, got %d", len(mem.turns))
	}
}

func TestProcessMessage_FullPipelineOnQuestionRequiringTool(t *testing.T) {
	o, _ := newTestOrchestrator(models.IntentQuestion, true)
	result, err := o.ProcessMessage(context.Background(), "calculate the sum of 2 and 2", "conv_2")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if result.Response != "the answer" {
		t.Errorf("expected the executor's output to surface, got %q", result.Response)
	}
}

func TestProcessMessage_ClarificationStepSuspendsAndResumes(t *testing.T) {
	mem := &fakeMemoryManager{}
	plan := models.NewExecutionPlan("apl_clarify", nil)
	plan.Steps = []*models.PlanStep{{Index: 0, Type: models.StepClarification}}
	o := New(
		&fakeIntentAgent{intentType: models.IntentQuestion, requiresTool: true},
		&fakePlannerAgent{plan: plan},
		&fakeExecutorAgent{output: "resolved", success: true},
		&fakeVerifierAgent{},
		&fakeExplainerAgent{},
		Deps{Memory: mem},
	)

	first, err := o.ProcessMessage(context.Background(), "do the thing", "conv_3")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if first.Confidence != 0.5 {
		t.Errorf("expected clarification confidence 0.5, got %f", first.Confidence)
	}

	o.plannerAgent = &fakePlannerAgent{}
	second, err := o.ProcessMessage(context.Background(), "option two", "conv_3")
	if err != nil {
		t.Fatalf("ProcessMessage failed on resume: %v", err)
	}
	if second.Response == "" {
		t.Error("expected a resumed response after clarification")
	}
}

func TestProcessMessage_RecoversFromPanic(t *testing.T) {
	o, _ := newTestOrchestrator(models.IntentQuestion, false)
	o.plannerAgent = panickingPlanner{}

	result, err := o.ProcessMessage(context.Background(), "do something risky", "conv_4")
	if err != nil {
		t.Fatalf("expected ProcessMessage to recover, not return an error: %v", err)
	}
	if result.Confidence != 0 {
		t.Errorf("expected confidence 0 after a recovered panic, got %f", result.Confidence)
	}
	if result.Response != apologyResponse {
		t.Errorf("expected the fixed apology response, got %q", result.Response)
	}
}

type panickingPlanner struct{}

func (panickingPlanner) Run(ctx context.Context, intent *models.Intent) (*models.ExecutionPlan, error) {
	panic("boom")
}

func TestConversationState_TopicsAreBoundedAndFilterShortWords(t *testing.T) {
	s := &conversationState{}
	s.recordTopics("hi ok a conversation about programming languages and databases")
	if len(s.Topics) > maxTopics {
		t.Fatalf("expected topics bounded to %d, got %d", maxTopics, len(s.Topics))
	}
	for _, topic := range s.Topics {
		if len(topic) <= topicMinLength {
			t.Errorf("expected only words longer than %d chars, got %q", topicMinLength, topic)
		}
	}
}
