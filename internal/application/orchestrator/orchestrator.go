// Package orchestrator implements the C12 pipeline sequencer: one
// process_message call walks intent -> fast-path gate -> planner ->
// executor -> verifier (with bounded retry) -> explainer, holding the
// per-conversation state the five agents don't carry themselves.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	idgen "github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

const (
	defaultMaxRetries = 2
	maxTopics         = 5
	topicMinLength    = 5

	apologyResponse          = "I'm sorry, something went wrong while handling that. Please try again."
	genericClarificationText = "Could you clarify what you'd like me to do?"
)

// fastPathLexicon is the fixed greeting/farewell/thanks pattern set that,
// combined with a non-tool question, routes around the planner.
var fastPathLexicon = []string{
	"hello", "hi there", "hey", "good morning", "good afternoon", "good evening",
	"bye", "goodbye", "see you", "farewell",
	"thanks", "thank you", "appreciate it",
}

// memorableFactLexicon is the fixed set of phrases that triggers an
// auto-approved memory write of the user's own turn.
var memorableFactLexicon = []string{
	"my name is", "i prefer", "please remember", "remember that",
	"i like", "i don't like", "i live in", "i am from",
}

// conversationState is the orchestrator's in-process projection of one
// conversation: a turn counter and a bounded ring of recent topics.
type conversationState struct {
	TurnCount int
	Topics    []string
}

func (s *conversationState) recordTopics(text string) {
	for _, w := range strings.Fields(text) {
		w = strings.ToLower(strings.Trim(w, ".,!?;:\"'"))
		if len(w) <= topicMinLength {
			continue
		}
		s.Topics = append(s.Topics, w)
		if len(s.Topics) > maxTopics {
			s.Topics = s.Topics[len(s.Topics)-maxTopics:]
		}
	}
}

// Orchestrator sequences the five-stage agent pipeline per conversation.
// Per spec, the conversation-context map, the pending-clarifications map,
// and the registered-tools map are the only application-level shared
// mutable state across concurrent requests; each is guarded by its own
// mutex, and a sync.Map of per-conversation mutexes serialises requests
// that share a conversation id without blocking requests for others.
type Orchestrator struct {
	intentAgent    ports.IntentAgent
	plannerAgent   ports.PlannerAgent
	executorAgent  ports.ExecutorAgent
	verifierAgent  ports.VerifierAgent
	explainerAgent ports.ExplainerAgent

	memory    ports.MemoryManager
	tools     ports.ToolRepositoryService
	sandbox   ports.SandboxExecutor
	discovery ports.ToolDiscoveryService

	maxRetries int
	ids        *idgen.Generator

	convLocks sync.Map // conversationID -> *sync.Mutex

	stateMu       sync.Mutex
	conversations map[string]*conversationState

	clarMu                 sync.Mutex
	pendingClarifications map[string]struct{}

	toolsMu         sync.Mutex
	registeredTools map[string]struct{}
}

// Deps bundles the collaborators ProcessMessage needs beyond the five
// agents; memory/tools/sandbox/discovery may each be nil, in which case
// the corresponding step degrades (see agents.ExecutorStepDeps).
type Deps struct {
	Memory     ports.MemoryManager
	Tools      ports.ToolRepositoryService
	Sandbox    ports.SandboxExecutor
	Discovery  ports.ToolDiscoveryService
	MaxRetries int
}

func New(intent ports.IntentAgent, planner ports.PlannerAgent, executor ports.ExecutorAgent, verifier ports.VerifierAgent, explainer ports.ExplainerAgent, deps Deps) *Orchestrator {
	maxRetries := deps.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Orchestrator{
		intentAgent:           intent,
		plannerAgent:          planner,
		executorAgent:         executor,
		verifierAgent:         verifier,
		explainerAgent:        explainer,
		memory:                deps.Memory,
		tools:                 deps.Tools,
		sandbox:               deps.Sandbox,
		discovery:             deps.Discovery,
		maxRetries:            maxRetries,
		ids:                   idgen.New(),
		conversations:         make(map[string]*conversationState),
		pendingClarifications: make(map[string]struct{}),
		registeredTools:       make(map[string]struct{}),
	}
}

// RegisterTool records a tool name as resolvable by name, so a future
// intent whose text names it can be planned straight to tool_execution
// instead of tool_discovery. Called by the host process as manifests move
// to active.
func (o *Orchestrator) RegisterTool(name string) {
	o.toolsMu.Lock()
	defer o.toolsMu.Unlock()
	o.registeredTools[name] = struct{}{}
}

func (o *Orchestrator) UnregisterTool(name string) {
	o.toolsMu.Lock()
	defer o.toolsMu.Unlock()
	delete(o.registeredTools, name)
}

func (o *Orchestrator) resolveToolHint(text string) string {
	o.toolsMu.Lock()
	defer o.toolsMu.Unlock()
	lower := strings.ToLower(text)
	for name := range o.registeredTools {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

func (o *Orchestrator) lockFor(conversationID string) *sync.Mutex {
	actual, _ := o.convLocks.LoadOrStore(conversationID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

func (o *Orchestrator) stateFor(conversationID string) *conversationState {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	s, ok := o.conversations[conversationID]
	if !ok {
		s = &conversationState{}
		o.conversations[conversationID] = s
	}
	return s
}

func (o *Orchestrator) consumePendingClarification(conversationID string) bool {
	o.clarMu.Lock()
	defer o.clarMu.Unlock()
	if _, ok := o.pendingClarifications[conversationID]; ok {
		delete(o.pendingClarifications, conversationID)
		return true
	}
	return false
}

func (o *Orchestrator) setPendingClarification(conversationID string) {
	o.clarMu.Lock()
	defer o.clarMu.Unlock()
	o.pendingClarifications[conversationID] = struct{}{}
}

// ProcessMessage serialises requests sharing conversationID via a
// per-conversation mutex; distinct conversations proceed concurrently.
func (o *Orchestrator) ProcessMessage(ctx context.Context, text, conversationID string) (*ports.Result, error) {
	lock := o.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()
	return o.process(ctx, text, conversationID)
}

// process implements the 14-step algorithm. It recovers from any panic
// into a fixed apology response per spec, and recurses directly (not
// through ProcessMessage, which would deadlock on the held lock) when
// consuming a pending clarification.
func (o *Orchestrator) process(ctx context.Context, text, conversationID string) (result *ports.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = &ports.Result{Response: apologyResponse, Confidence: 0, Reasoning: fmt.Sprintf("internal error: %v", r)}
			err = nil
		}
	}()

	state := o.stateFor(conversationID)

	if o.memory != nil {
		_ = o.memory.StoreTurn(ctx, conversationID, models.NewConversationTurn(models.TurnRoleUser, text))
	}

	if o.consumePendingClarification(conversationID) {
		return o.process(ctx, "[Clarification] "+text, conversationID)
	}

	memCh := make(chan struct{})
	var memCtx *ports.MemoryContext
	if o.memory != nil {
		go func() {
			defer close(memCh)
			memCtx, _ = o.memory.Retrieve(ctx, ports.RetrievalRequest{UserMessage: text, ConversationID: conversationID})
		}()
	} else {
		close(memCh)
	}

	intent, intentErr := o.intentAgent.Run(ctx, text)
	if intentErr != nil || intent == nil {
		intent = models.NewIntent(o.ids.GenerateIntentID(), text, models.IntentUnknown)
	}
	if intent.ToolHint == "" && intent.RequiresTool {
		intent.ToolHint = o.resolveToolHint(text)
	}

	<-memCh

	if o.isFastPath(intent, text) {
		return o.runFastPath(ctx, intent, memCtx, conversationID, state)
	}

	plan, planErr := o.plannerAgent.Run(ctx, intent)
	if planErr != nil || plan == nil {
		return &ports.Result{Response: apologyResponse, Confidence: 0, Reasoning: "planner unavailable"}, nil
	}
	if plan.HasClarificationStep() {
		o.setPendingClarification(conversationID)
		return &ports.Result{Response: genericClarificationText, Confidence: 0.5}, nil
	}

	deps := ports.ExecutorStepDeps{Tools: o.tools, Sandbox: o.sandbox, Discovery: o.discovery, MemoryCtx: memCtx}
	if o.memory != nil {
		deps.Retrieval = o.memory
	}

	execResult, execErr := o.executorAgent.Run(ctx, plan, deps)
	if execErr != nil || execResult == nil {
		return &ports.Result{Response: apologyResponse, Confidence: 0, Reasoning: "executor unavailable"}, nil
	}

	var verification *models.Verification
	if plan.RequiresVerification {
		verification, _ = o.verifierAgent.Run(ctx, execResult)
		for attempt := 0; verification != nil && verification.RequiresCorrection && attempt < o.maxRetries; attempt++ {
			correctionDeps := deps
			correctionDeps.MemoryCtx = withCorrectionNote(memCtx, verification)
			execResult, execErr = o.executorAgent.Run(ctx, plan, correctionDeps)
			if execErr != nil || execResult == nil {
				break
			}
			verification, _ = o.verifierAgent.Run(ctx, execResult)
		}
	}

	response, reasoning, confidence := o.composeResponse(ctx, plan, execResult, verification)

	o.stateMu.Lock()
	state.TurnCount++
	state.recordTopics(text)
	o.stateMu.Unlock()

	if o.memory != nil {
		_ = o.memory.StoreTurn(ctx, conversationID, models.NewConversationTurn(models.TurnRoleAssistant, response))
		if containsAny(strings.ToLower(text), memorableFactLexicon) {
			_, _ = o.memory.WriteMemory(ctx, ports.WriteRequest{
				Kind:           models.MemoryKindPreference,
				Content:        text,
				Source:         models.MetadataSourceConversation,
				Confidence:     0.8,
				ConversationID: conversationID,
			}, ports.VerifierApproval{Approved: true, Confidence: 0.8})
		}
	}

	return &ports.Result{Response: response, Reasoning: reasoning, Confidence: confidence}, nil
}

// isFastPath implements spec's gate: a conversational intent always
// qualifies; a question qualifies only when it doesn't require a tool and
// matches the fixed greeting/farewell/thanks lexicon.
func (o *Orchestrator) isFastPath(intent *models.Intent, text string) bool {
	if intent.Type == models.IntentConversation {
		return true
	}
	return intent.Type == models.IntentQuestion && !intent.RequiresTool && containsAny(strings.ToLower(text), fastPathLexicon)
}

func (o *Orchestrator) runFastPath(ctx context.Context, intent *models.Intent, memCtx *ports.MemoryContext, conversationID string, state *conversationState) (*ports.Result, error) {
	plan := &models.ExecutionPlan{
		ID:                   o.ids.GeneratePlanID(),
		Intent:               intent,
		Steps:                []*models.PlanStep{{Index: 0, Type: models.StepLLMResponse}},
		RequiresVerification: false,
		RequiresExplanation:  false,
		Complexity:           models.ComplexitySimple,
		RiskLevel:            "low",
	}
	result, err := o.executorAgent.Run(ctx, plan, ports.ExecutorStepDeps{MemoryCtx: memCtx})
	if err != nil || result == nil {
		return &ports.Result{Response: apologyResponse, Confidence: 0, Reasoning: "executor unavailable"}, nil
	}

	o.stateMu.Lock()
	state.TurnCount++
	state.recordTopics(intent.Text)
	o.stateMu.Unlock()

	if o.memory != nil {
		_ = o.memory.StoreTurn(ctx, conversationID, models.NewConversationTurn(models.TurnRoleAssistant, result.FinalOutput))
	}

	return &ports.Result{Response: result.FinalOutput, Reasoning: "Simple conversational response", Confidence: 1.0}, nil
}

func (o *Orchestrator) composeResponse(ctx context.Context, plan *models.ExecutionPlan, execResult *models.ExecutionResult, verification *models.Verification) (response, reasoning string, confidence float64) {
	confidence = 1.0
	if verification != nil {
		confidence = verification.Confidence
	}

	if !plan.RequiresExplanation && execResult.FinalOutput != "" {
		return execResult.FinalOutput, "", confidence
	}

	resp, why, note, err := o.explainerAgent.Run(ctx, execResult, verification)
	if err != nil {
		return execResult.FinalOutput, why, confidence
	}
	if note != "" {
		resp = strings.TrimSpace(resp + " " + note)
	}
	return resp, why, confidence
}

// withCorrectionNote prepends a correction hint to the conversation
// summary so the re-executed llm_response step's prompt includes it,
// without changing the ExecutorAgent interface.
func withCorrectionNote(memCtx *ports.MemoryContext, verification *models.Verification) *ports.MemoryContext {
	note := "Previous attempt had issues: " + strings.Join(verification.Issues, "; ")
	if memCtx == nil {
		return &ports.MemoryContext{ConversationSummary: note}
	}
	cp := *memCtx
	cp.ConversationSummary = note + "\n" + cp.ConversationSummary
	return &cp
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

var _ ports.Orchestrator = (*Orchestrator)(nil)
