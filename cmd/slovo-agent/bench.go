package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// benchUtterance is one line of the fixed demo script run through the
// orchestrator, grounded on the original's simple-vs-complex comparison
// in demo_optimization.py.
type benchUtterance struct {
	label string
	text  string
}

// benchScript is the fixed utterance script: a greeting that should take
// the fast path, and a question that should walk the full pipeline.
var benchScript = []benchUtterance{
	{label: "simple (greeting)", text: "Hello!"},
	{label: "complex (question)", text: "What is quantum computing?"},
}

// benchCmd runs the fixed utterance script through the orchestrator and
// reports per-utterance latency, the closest external signal to the
// per-stage timings the original's mocked demo printed: ProcessMessage
// is the only seam exposed across conversations, so latency is measured
// at that boundary rather than per-agent.
func benchCmd() *cobra.Command {
	var conversationPrefix string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a fixed utterance script through the pipeline and report latency",
		Long: `bench runs a small fixed script of utterances through the orchestrator,
one per conversation, and reports the end-to-end latency and whether the
fast path or the full five-stage pipeline handled each one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			deps, err := buildREPLDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.pool.Close()

			fmt.Println("AGENT PIPELINE BENCH")
			fmt.Println()

			var total time.Duration
			for i, u := range benchScript {
				conversationID := fmt.Sprintf("%sbench-%d", conversationPrefix, i)

				start := time.Now()
				result, err := deps.orchestrator.ProcessMessage(ctx, u.text, conversationID)
				elapsed := time.Since(start)
				total += elapsed

				fmt.Printf("[%s] %q\n", u.label, u.text)
				if err != nil {
					fmt.Printf("  error: %v\n", err)
					continue
				}
				fmt.Printf("  response:   %s\n", result.Response)
				fmt.Printf("  confidence: %.2f\n", result.Confidence)
				fmt.Printf("  latency:    %s\n", elapsed)
				if result.Reasoning != "" {
					fmt.Printf("  reasoning:  %s\n", result.Reasoning)
				}
				fmt.Println()
			}

			fmt.Printf("total latency across %d utterances: %s\n", len(benchScript), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationPrefix, "conversation-prefix", "", "prefix applied to the per-utterance conversation ids bench mints")
	return cmd
}
