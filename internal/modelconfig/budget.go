// Package modelconfig resolves a model's context-window token budget
// (C8): an env override, then a cached YAML configuration document, then
// absent.
package modelconfig

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	envOverride     = "LLM_CONTEXT_WINDOW_TOKENS"
	envConfigPath   = "LLM_CONTEXT_WINDOW_CONFIG"
	defaultFraction = 0.8
)

// Document is the on-disk context-window configuration: per-model token
// budgets take precedence over per-provider-then-model budgets.
type Document struct {
	Models    map[string]int            `yaml:"models"`
	Providers map[string]map[string]int `yaml:"providers"`
}

var loadOnce = sync.OnceValue(loadDocument)

var compactionFraction = defaultFraction

// SetCompactionFraction overrides the fraction of a model's context
// window that triggers history compaction, read from the agent-loop
// defaults document at CLI startup. 0 or negative values are ignored.
func SetCompactionFraction(f float64) {
	if f > 0 {
		compactionFraction = f
	}
}

// ContextWindowTokens resolves the token budget for model, in order:
// LLM_CONTEXT_WINDOW_TOKENS (a single positive integer), the cached
// configuration document's models map, any provider's map entry for
// model, else 0 with ok=false.
func ContextWindowTokens(log *zap.Logger, model string) (int, bool) {
	if raw, present := os.LookupEnv(envOverride); present {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			log.Warn("ignoring malformed context window override",
				zap.String("env", envOverride), zap.String("value", raw))
		} else {
			return v, true
		}
	}

	doc := loadOnce()
	return resolveFromDocument(model, doc)
}

func resolveFromDocument(model string, doc Document) (int, bool) {
	if v, ok := doc.Models[model]; ok {
		return v, true
	}
	for _, models := range doc.Providers {
		if v, ok := models[model]; ok {
			return v, true
		}
	}
	return 0, false
}

// CompactionThreshold is the configurable fraction (default 0.8) of a
// resolved budget at which accumulated prompt tokens trigger compaction.
func CompactionThreshold(budget int) int {
	return int(float64(budget) * compactionFraction)
}

func loadDocument() Document {
	path, ok := locateConfigPath()
	if !ok {
		return Document{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}
	}
	return doc
}

// locateConfigPath mirrors the override-then-candidate-paths search: an
// explicit env override if the file exists, else a couple of
// conventional locations relative to the working directory.
func locateConfigPath() (string, bool) {
	if override, present := os.LookupEnv(envConfigPath); present {
		if _, err := os.Stat(override); err == nil {
			return override, true
		}
		return "", false
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	candidates := []string{
		filepath.Join(cwd, "config", "model_context_windows.yaml"),
		filepath.Join(cwd, "ariadnectl", "config", "model_context_windows.yaml"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, true
		}
	}
	return "", false
}

// ResetCacheForTest clears the process-lifetime cache so tests can
// exercise different env/config states. Production code never calls
// this; the cache is meant to be initialized exactly once per process.
func ResetCacheForTest() {
	loadOnce = sync.OnceValue(loadDocument)
}
