package main

import (
	"context"
	"fmt"
	"os"

	"github.com/firebase/genkit/go/genkit"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/antflydb/ariadne/internal/agent"
	"github.com/antflydb/ariadne/internal/core"
	"github.com/antflydb/ariadne/internal/llm"
	"github.com/antflydb/ariadne/internal/modelconfig"
	"github.com/antflydb/ariadne/internal/obslog"
	"github.com/antflydb/ariadne/internal/tool"
)

// runtime bundles what the "ask" command needs: the logger, the wired
// pipeline, and the resolved model name. "config check" does not build
// one; it shares only resolvedConfig.
type runtime struct {
	Logger   *zap.Logger
	Pipeline *agent.Pipeline
	Model    string
}

func resolvedConfig() llm.Config {
	return llm.Config{
		Backend:          "openrouter",
		BaseURL:          viper.GetString("backend-url"),
		Model:            viper.GetString("model"),
		APIKey:           viper.GetString("api-key"),
		TimeoutSeconds:   viper.GetInt("timeout-seconds"),
		StructuredOutput: viper.GetBool("structured-output"),
	}
}

func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg := resolvedConfig()

	logger, err := obslog.New(obslog.Config{
		Style: obslog.Style(viper.GetString("log-style")),
		Level: viper.GetString("log-level"),
	})
	if err != nil {
		return nil, fmt.Errorf("ariadnectl: build logger: %w", err)
	}

	if path := viper.GetString("context-window-config"); path != "" {
		if err := os.Setenv("LLM_CONTEXT_WINDOW_CONFIG", path); err != nil {
			return nil, fmt.Errorf("ariadnectl: set context window config path: %w", err)
		}
	}

	loopCfg := agent.LoopConfig{}
	if path := viper.GetString("loop-config"); path != "" {
		defaults, err := agent.LoadLoopDefaults(path)
		if err != nil {
			return nil, fmt.Errorf("ariadnectl: load loop defaults: %w", err)
		}
		loopCfg = defaults.AsLoopConfig()
		modelconfig.SetCompactionFraction(defaults.CompactionFraction)
	}

	plugin := &llm.OpenRouter{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.TimeoutSeconds,
	}
	g := genkit.Init(ctx, genkit.WithPlugins(plugin))

	structured := llm.StructuredOutputEnabled(cfg)
	modelID := cfg.Model
	model := plugin.DefineModel(g, llm.ModelDefinition{Name: modelID}, structured)

	schema := agent.StaticSchema{}
	client, err := agent.NewGenkitClient(g, model, cfg, schema)
	if err != nil {
		return nil, fmt.Errorf("ariadnectl: build LLM client: %w", err)
	}

	backend := core.NewMemoryGraphBackend()
	executor := tool.NewCypherQueryTool(backend)

	loop := agent.NewLoop(client, executor, logger, loopCfg)
	pipeline := agent.NewPipeline(client, client, loop, executor, logger, cfg.Model)

	return &runtime{Logger: logger, Pipeline: pipeline, Model: cfg.Model}, nil
}
