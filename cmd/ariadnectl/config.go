package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/antflydb/ariadne/internal/modelconfig"
	"github.com/antflydb/ariadne/internal/obslog"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML (API key redacted)",
	RunE:  runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the resolved configuration without making any LLM calls",
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := resolvedConfig()
	redacted := "(unset)"
	if cfg.APIKey != "" {
		redacted = "(set)"
	}

	out := map[string]any{
		"backend":               "openrouter",
		"backend_url":           cfg.BaseURL,
		"model":                 cfg.Model,
		"api_key":               redacted,
		"timeout_seconds":       cfg.TimeoutSeconds,
		"structured_output":     cfg.StructuredOutput,
		"log_level":             viper.GetString("log-level"),
		"log_style":             viper.GetString("log-style"),
		"loop_config":           viper.GetString("loop-config"),
		"context_window_config": viper.GetString("context-window-config"),
	}
	encoded, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("ariadnectl: marshal config: %w", err)
	}
	fmt.Print(string(encoded))
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg := resolvedConfig()
	if cfg.Model == "" {
		return fmt.Errorf("config check: model is required")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("config check: backend-url is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("config check: api-key is required (flag --api-key or OPENROUTER_API_KEY)")
	}
	if _, err := obslog.New(obslog.Config{Style: obslog.Style(viper.GetString("log-style")), Level: viper.GetString("log-level")}); err != nil {
		return fmt.Errorf("config check: %w", err)
	}

	if path := viper.GetString("context-window-config"); path != "" {
		if err := os.Setenv("LLM_CONTEXT_WINDOW_CONFIG", path); err != nil {
			return fmt.Errorf("config check: set context window config path: %w", err)
		}
	}
	budget, ok := modelconfig.ContextWindowTokens(zap.NewNop(), cfg.Model)
	if ok {
		fmt.Printf("context window for %s: %d tokens (compaction at %d)\n", cfg.Model, budget, modelconfig.CompactionThreshold(budget))
	} else {
		fmt.Printf("no context window configured for %s; history compaction is disabled\n", cfg.Model)
	}

	fmt.Println("config OK")
	return nil
}
