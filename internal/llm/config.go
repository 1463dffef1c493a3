package llm

import (
	"os"
	"strconv"
)

// StructuredOutputEnabled reads LLM_STRUCTURED_OUTPUT, defaulting to cfg's
// value when the env var is unset or unparseable. Shared by the genkit
// capability implementations and the openrouter plugin's response_format
// wiring so both honor the same override.
func StructuredOutputEnabled(cfg Config) bool {
	raw, ok := os.LookupEnv("LLM_STRUCTURED_OUTPUT")
	if !ok {
		return cfg.StructuredOutput
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return cfg.StructuredOutput
	}
	return v
}
