package modelconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func withConfig(t *testing.T, yamlBody string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model_context_windows.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	t.Setenv(envConfigPath, path)
	t.Setenv(envOverride, "")
	os.Unsetenv(envOverride)
	ResetCacheForTest()
}

func TestContextWindowParsesProviders(t *testing.T) {
	withConfig(t, "providers:\n  openai:\n    gpt-4o: 128000\n")
	tokens, ok := ContextWindowTokens(zap.NewNop(), "gpt-4o")
	require.True(t, ok)
	require.Equal(t, 128000, tokens)
}

func TestContextWindowParsesModels(t *testing.T) {
	withConfig(t, "models:\n  custom-model: 32000\n")
	tokens, ok := ContextWindowTokens(zap.NewNop(), "custom-model")
	require.True(t, ok)
	require.Equal(t, 32000, tokens)
}

func TestContextWindowModelsTakePrecedence(t *testing.T) {
	withConfig(t, "models:\n  shared-name: 50000\nproviders:\n  openai:\n    shared-name: 9999\n")
	tokens, ok := ContextWindowTokens(zap.NewNop(), "shared-name")
	require.True(t, ok)
	require.Equal(t, 50000, tokens)
}

func TestContextWindowEnvOverrideWins(t *testing.T) {
	withConfig(t, "models:\n  gpt-4o: 128000\n")
	t.Setenv(envOverride, "8192")
	tokens, ok := ContextWindowTokens(zap.NewNop(), "gpt-4o")
	require.True(t, ok)
	require.Equal(t, 8192, tokens)
}

func TestContextWindowAbsentWhenUnconfigured(t *testing.T) {
	withConfig(t, "models:\n  other-model: 1000\n")
	_, ok := ContextWindowTokens(zap.NewNop(), "unknown-model")
	require.False(t, ok)
}

func TestCompactionThresholdIsDefaultFraction(t *testing.T) {
	require.Equal(t, 8000, CompactionThreshold(10000))
}
