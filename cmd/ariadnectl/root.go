package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "ariadnectl",
	Short:   "Ariadne - an SRE assistant for querying a Kubernetes cluster graph in plain English",
	Version: version,
	Long: `Ariadne translates SRE questions about a running Kubernetes cluster
into read-only Cypher queries, executes them against the cluster graph,
and synthesizes a grounded answer.

Use "ariadnectl ask" to ask a single question, or "ariadnectl config" to
inspect the resolved LLM and runtime configuration.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (defaults to ./ariadnectl.yaml if present)")
	rootCmd.PersistentFlags().String("backend-url", "https://openrouter.ai/api/v1", "LLM backend base URL")
	rootCmd.PersistentFlags().String("model", "openai/gpt-4o-mini", "LLM model ID")
	rootCmd.PersistentFlags().String("api-key", "", "LLM backend API key (falls back to OPENROUTER_API_KEY)")
	rootCmd.PersistentFlags().Int("timeout-seconds", 60, "LLM request timeout in seconds")
	rootCmd.PersistentFlags().Bool("structured-output", true, "Ask the model for structured JSON output (LLM_STRUCTURED_OUTPUT env overrides this)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-style", "terminal", "Log style: terminal, json, logfmt, noop")
	rootCmd.PersistentFlags().String("loop-config", "", "Path to an agent loop defaults YAML file (max_steps, max_retries, compaction_fraction)")
	rootCmd.PersistentFlags().String("context-window-config", "", "Path to the model context-window YAML document (sets LLM_CONTEXT_WINDOW_CONFIG)")

	for _, name := range []string{
		"backend-url", "model", "api-key", "timeout-seconds", "structured-output",
		"log-level", "log-style", "loop-config", "context-window-config",
	} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("ariadnectl: bind flag %s: %v", name, err))
		}
	}
	if err := viper.BindEnv("api-key", "OPENROUTER_API_KEY"); err != nil {
		panic(fmt.Sprintf("ariadnectl: bind env for api-key: %v", err))
	}

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	viper.SetEnvPrefix("ARIADNE")
	viper.AutomaticEnv()

	if path, _ := rootCmd.PersistentFlags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("ariadnectl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintf(os.Stderr, "ariadnectl: warning: %v\n", err)
		}
	}
}
