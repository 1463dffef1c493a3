package llm

import (
	"strings"

	"github.com/antflydb/ariadne/internal/core"
)

// structuredRejectionMarkers are substrings genkit/provider SDKs use in
// error messages when a model refuses or cannot honor a response-format
// (structured output) request.
var structuredRejectionMarkers = []string{
	"response_format",
	"response format",
	"invalid_request",
	"invalid request",
	"json schema",
	"structured output",
}

// WrapProviderError classifies a raw provider/transport error into the
// closed taxonomy. In structured mode, an error that looks like a
// structured-output rejection is rewrapped with guidance to disable it;
// everything else becomes a plain transport error. Structured mode
// rejections are reported as LLM format errors, not transport errors,
// since the fix is a configuration change rather than a retry.
func WrapProviderError(err error, structured bool) *core.Error {
	if err == nil {
		return nil
	}
	if structured && looksLikeStructuredRejection(err.Error()) {
		return &core.Error{
			Kind:    core.KindLLMFormat,
			Message: "provider rejected structured output request; set LLM_STRUCTURED_OUTPUT=0 to fall back to unstructured parsing: " + err.Error(),
			Cause:   err,
		}
	}
	return &core.Error{
		Kind:    core.KindLLMTransport,
		Message: err.Error(),
		Cause:   err,
	}
}

func looksLikeStructuredRejection(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range structuredRejectionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
