package models

// StepResult is the outcome of executing a single PlanStep.
type StepResult struct {
	StepIndex int    `json:"step_index"`
	Success   bool   `json:"success"`
	Output    any    `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ExecutionResult is the executor's (C11) full-plan output.
type ExecutionResult struct {
	Plan          *ExecutionPlan `json:"plan"`
	StepResults   []*StepResult  `json:"step_results"`
	Success       bool           `json:"success"`
	FinalOutput   string         `json:"final_output,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// NewExecutionResult builds an empty result bound to a plan.
func NewExecutionResult(plan *ExecutionPlan) *ExecutionResult {
	return &ExecutionResult{
		Plan:        plan,
		StepResults: make([]*StepResult, 0, len(plan.Steps)),
		Success:     true,
	}
}

// AddStepResult appends a result, updating the final output by convention
// (the last step's output) and flipping Success on the first failure.
func (r *ExecutionResult) AddStepResult(sr *StepResult) {
	r.StepResults = append(r.StepResults, sr)
	if !sr.Success {
		r.Success = false
		r.Error = sr.Error
		return
	}
	if s, ok := sr.Output.(string); ok && s != "" {
		r.FinalOutput = s
	}
}

// FailedSteps returns the count of steps that did not succeed.
func (r *ExecutionResult) FailedSteps() int {
	n := 0
	for _, sr := range r.StepResults {
		if !sr.Success {
			n++
		}
	}
	return n
}
