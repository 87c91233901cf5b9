package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

const verifierConfidenceNoteThreshold = 0.7

// ExplainerAgent turns an ExecutionResult + Verification into a
// user-facing response, via the model when configured and via a fixed
// composition rule otherwise.
type ExplainerAgent struct {
	llm ports.LLMService
}

func NewExplainerAgent(llm ports.LLMService) *ExplainerAgent {
	return &ExplainerAgent{llm: llm}
}

func (a *ExplainerAgent) Run(ctx context.Context, result *models.ExecutionResult, verification *models.Verification) (response, reasoning, confidenceNote string, err error) {
	if a.llm != nil && a.llm.Configured() {
		if resp, ok := a.explainWithModel(ctx, result, verification); ok {
			response = resp
		}
	}
	if response == "" {
		response = result.FinalOutput
	}

	reasoning = a.buildReasoning(result, verification)
	confidenceNote = a.buildConfidenceNote(verification)
	return response, reasoning, confidenceNote, nil
}

func (a *ExplainerAgent) explainWithModel(ctx context.Context, result *models.ExecutionResult, verification *models.Verification) (string, bool) {
	resp, err := a.llm.Chat(ctx, []ports.LLMMessage{
		{Role: "user", Content: "Rewrite this result as a clear, user-facing response: " + result.FinalOutput},
	})
	if err != nil || resp == nil || resp.Content == "" {
		return "", false
	}
	return resp.Content, true
}

// buildReasoning implements spec's fallback: intent type, step count, and
// the issues list, concatenated.
func (a *ExplainerAgent) buildReasoning(result *models.ExecutionResult, verification *models.Verification) string {
	var intentType models.IntentType
	if result.Plan != nil && result.Plan.Intent != nil {
		intentType = result.Plan.Intent.Type
	}
	parts := []string{
		fmt.Sprintf("intent=%s", intentType),
		fmt.Sprintf("steps=%d", len(result.StepResults)),
	}
	if verification != nil && len(verification.Issues) > 0 {
		parts = append(parts, "issues="+strings.Join(verification.Issues, "; "))
	}
	return strings.Join(parts, ", ")
}

// buildConfidenceNote emits a note only when verifier confidence drops
// below 0.7.
func (a *ExplainerAgent) buildConfidenceNote(verification *models.Verification) string {
	if verification == nil || verification.Confidence >= verifierConfidenceNoteThreshold {
		return ""
	}
	return fmt.Sprintf("I'm not fully confident in this response (confidence %.2f).", verification.Confidence)
}

var _ ports.ExplainerAgent = (*ExplainerAgent)(nil)
