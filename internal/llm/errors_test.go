package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/antflydb/ariadne/internal/core"
)

func TestWrapProviderErrorStructuredRejectionBecomesFormatError(t *testing.T) {
	err := errors.New("invalid_request: response_format not supported by this model")
	wrapped := WrapProviderError(err, true)
	assert.Equal(t, core.KindLLMFormat, wrapped.Kind)
	assert.Contains(t, wrapped.Message, "LLM_STRUCTURED_OUTPUT=0")
}

func TestWrapProviderErrorUnstructuredStaysTransport(t *testing.T) {
	err := errors.New("connection reset by peer")
	wrapped := WrapProviderError(err, false)
	assert.Equal(t, core.KindLLMTransport, wrapped.Kind)
}

func TestWrapProviderErrorStructuredButUnrelatedStaysTransport(t *testing.T) {
	err := errors.New("connection reset by peer")
	wrapped := WrapProviderError(err, true)
	assert.Equal(t, core.KindLLMTransport, wrapped.Kind)
}
