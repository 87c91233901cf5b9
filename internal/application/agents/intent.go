// Package agents implements the five C11 typed-call-plus-fallback agents:
// intent classification, planning, execution, verification, and
// explanation. Each agent routes the heavy reasoning through
// ports.LLMService (StructuredChat or Chat) when configured and falls back to a
// deterministic heuristic otherwise, so the orchestrator never blocks on
// model availability.
package agents

import (
	"context"
	"slices"
	"strings"

	idgen "github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

// toolLexicon is the fixed set of phrases that flags an utterance as
// requiring a tool in the heuristic fallback.
var toolLexicon = []string{"search", "find", "look up", "calculate", "convert", "translate"}

var interrogativeWords = []string{"what", "when", "where", "who", "why", "how", "which", "is", "are", "do", "does", "can", "could", "would", "will"}

// IntentAgent classifies a single utterance into a typed Intent, via the
// model when configured and via a fixed lexical heuristic otherwise.
type IntentAgent struct {
	llm ports.LLMService
	ids *idgen.Generator
}

func NewIntentAgent(llm ports.LLMService) *IntentAgent {
	return &IntentAgent{llm: llm, ids: idgen.New()}
}

func (a *IntentAgent) Run(ctx context.Context, text string) (*models.Intent, error) {
	intent := models.NewIntent(a.ids.GenerateIntentID(), text, models.IntentUnknown)
	intent.RequiresTool = containsAny(strings.ToLower(text), toolLexicon)

	if a.llm != nil && a.llm.Configured() {
		if resolved := a.classifyWithModel(ctx, intent); resolved {
			return intent, nil
		}
	}

	a.classifyHeuristically(intent)
	return intent, nil
}

// classifyWithModel asks the model to pick a type; on any failure or
// unrecognised content it leaves intent untouched and returns false so
// the caller falls through to the heuristic path.
func (a *IntentAgent) classifyWithModel(ctx context.Context, intent *models.Intent) bool {
	resp, err := a.llm.StructuredChat(ctx, []ports.LLMMessage{
		{Role: "user", Content: "Classify this utterance as one of question, command, conversation, tool_request: " + intent.Text},
	}, "{\"type\": \"question|command|conversation|tool_request\", \"confidence\": 0.0}")
	if err != nil || resp == nil || resp.Content == "" {
		return false
	}
	kind, ok := matchIntentType(resp.Content)
	if !ok {
		return false
	}
	intent.Type = kind
	intent.SetConfidence(0.9)
	return true
}

func matchIntentType(content string) (models.IntentType, bool) {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, string(models.IntentToolRequest)):
		return models.IntentToolRequest, true
	case strings.Contains(lower, string(models.IntentQuestion)):
		return models.IntentQuestion, true
	case strings.Contains(lower, string(models.IntentCommand)):
		return models.IntentCommand, true
	case strings.Contains(lower, string(models.IntentConversation)):
		return models.IntentConversation, true
	default:
		return models.IntentUnknown, false
	}
}

// classifyHeuristically implements spec's deterministic fallback: a
// trailing '?' or leading interrogative word makes it a question, a
// leading imperative word makes it a command, else conversation.
func (a *IntentAgent) classifyHeuristically(intent *models.Intent) {
	trimmed := strings.TrimSpace(intent.Text)
	lower := strings.ToLower(trimmed)
	firstWord := firstWord(lower)

	switch {
	case strings.HasSuffix(trimmed, "?") || slices.Contains(interrogativeWords, firstWord):
		intent.Type = models.IntentQuestion
	case isImperative(firstWord):
		intent.Type = models.IntentCommand
	default:
		intent.Type = models.IntentConversation
	}
	if intent.RequiresTool {
		intent.Type = models.IntentToolRequest
	}
	intent.SetConfidence(0.6)
}

var imperativeVerbs = []string{"find", "search", "calculate", "convert", "translate", "get", "show", "list", "set", "create", "delete", "run", "tell", "give", "open", "close", "start", "stop"}

func isImperative(firstWord string) bool {
	for _, v := range imperativeVerbs {
		if firstWord == v {
			return true
		}
	}
	return false
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,!?;:")
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

var _ ports.IntentAgent = (*IntentAgent)(nil)
