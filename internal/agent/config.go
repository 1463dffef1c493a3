package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoopDefaults is the on-disk shape of the agent loop's tunables,
// mirroring evalaf/eval.Config's YAML-document style for ambient
// configuration rather than flags or env vars.
type LoopDefaults struct {
	MaxSteps           int     `yaml:"max_steps"`
	MaxRetries         int     `yaml:"max_retries"`
	CompactionFraction float64 `yaml:"compaction_fraction"`
}

// LoadLoopDefaults reads path, if it exists, into a LoopDefaults. A
// missing file is not an error: callers fall back to LoopConfig's own
// defaults.
func LoadLoopDefaults(path string) (LoopDefaults, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return LoopDefaults{}, nil
	}
	if err != nil {
		return LoopDefaults{}, fmt.Errorf("agent: read loop defaults %s: %w", path, err)
	}
	var d LoopDefaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return LoopDefaults{}, fmt.Errorf("agent: parse loop defaults %s: %w", path, err)
	}
	return d, nil
}

// AsLoopConfig converts the on-disk defaults into a LoopConfig, leaving
// unset fields at zero so LoopConfig.withDefaults fills them in.
func (d LoopDefaults) AsLoopConfig() LoopConfig {
	return LoopConfig{MaxSteps: d.MaxSteps, MaxRetries: d.MaxRetries}
}
