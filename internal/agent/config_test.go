package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLoopDefaultsMissingFileIsZeroValue(t *testing.T) {
	d, err := LoadLoopDefaults(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, LoopDefaults{}, d)
}

func TestLoadLoopDefaultsParsesDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_steps: 4\nmax_retries: 1\ncompaction_fraction: 0.7\n"), 0o644))

	d, err := LoadLoopDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, LoopDefaults{MaxSteps: 4, MaxRetries: 1, CompactionFraction: 0.7}, d)
	assert.Equal(t, LoopConfig{MaxSteps: 4, MaxRetries: 1}, d.AsLoopConfig())
}
