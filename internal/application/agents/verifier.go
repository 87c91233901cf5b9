package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

const shortOutputThreshold = 10

// VerifierAgent judges an ExecutionResult, via the model when configured
// and via a fixed multiplicative confidence rule set otherwise.
type VerifierAgent struct {
	llm ports.LLMService
}

func NewVerifierAgent(llm ports.LLMService) *VerifierAgent {
	return &VerifierAgent{llm: llm}
}

func (a *VerifierAgent) Run(ctx context.Context, result *models.ExecutionResult) (*models.Verification, error) {
	v := models.NewVerification()

	a.applyHeuristicRules(v, result)

	if a.llm != nil && a.llm.Configured() {
		a.refineWithModel(ctx, v, result)
	}

	v.Finalize()
	return v, nil
}

// applyHeuristicRules implements spec's fallback: each failed step
// multiplies confidence by 0.5, overall failure by 0.3, a missing final
// output by 0.7, and a short (<10 char) output by 0.8.
func (a *VerifierAgent) applyHeuristicRules(v *models.Verification, result *models.ExecutionResult) {
	for _, sr := range result.StepResults {
		if !sr.Success {
			v.ScaleConfidence(0.5)
			v.AddIssue(fmt.Sprintf("step %d failed: %s", sr.StepIndex, sr.Error))
		}
	}
	if !result.Success {
		v.ScaleConfidence(0.3)
		v.AddIssue("execution did not complete successfully")
	}
	if strings.TrimSpace(result.FinalOutput) == "" {
		v.ScaleConfidence(0.7)
		v.AddIssue("no final output produced")
	} else if len(result.FinalOutput) < shortOutputThreshold {
		v.ScaleConfidence(0.8)
		v.AddIssue("final output is unusually short")
	}
}

// refineWithModel asks the model for additional issues or a correction
// hint; any failure or unparsable response leaves the heuristic verdict
// untouched.
func (a *VerifierAgent) refineWithModel(ctx context.Context, v *models.Verification, result *models.ExecutionResult) {
	resp, err := a.llm.StructuredChat(ctx, []ports.LLMMessage{
		{Role: "user", Content: "Does this response look correct and complete? " + result.FinalOutput},
	}, "{\"issues\": [\"...\"], \"correction_hint\": \"...\"}")
	if err != nil || resp == nil || resp.Content == "" {
		return
	}
	if strings.Contains(strings.ToLower(resp.Content), "issue") {
		v.CorrectionHint = resp.Content
	}
}

var _ ports.VerifierAgent = (*VerifierAgent)(nil)
