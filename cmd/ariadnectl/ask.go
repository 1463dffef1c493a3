package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/antflydb/ariadne/internal/agent"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the cluster in plain English",
	Long: `Ask translates a question into one or more read-only Cypher queries
against the cluster graph, executes them, and prints a synthesized
answer.

Examples:
  ariadnectl ask "which pods are crash-looping in namespace checkout?"
  ariadnectl ask --model anthropic/claude-3.5-sonnet "why is node gke-1 not ready?"
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Logger.Sync() //nolint:errcheck

	result, err := rt.Pipeline.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	printAnswer(result)
	return nil
}

func printAnswer(result *agent.AnalysisResult) {
	if result.Title != "" {
		fmt.Printf("%s\n\n", result.Title)
	}
	fmt.Println(result.Summary)
	for _, b := range result.Bullets {
		fmt.Printf("  - %s\n", b)
	}
	if len(result.FollowUps) > 0 {
		fmt.Println("\nFollow-ups:")
		for _, f := range result.FollowUps {
			fmt.Printf("  - %s\n", f)
		}
	}
	if result.Confidence != "" {
		fmt.Printf("\n[confidence: %s]\n", result.Confidence)
	}
}
