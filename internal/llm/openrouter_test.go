package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRouterGenerateSendsStructuredResponseFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req chatRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "openai/gpt-4", req.Model)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		resp := chatResponse{
			Choices: []choice{{Message: &chatMessage{Role: "assistant", Content: `{"cypher":"MATCH (n) RETURN n"}`}, FinishReason: "stop"}},
			Usage:   &usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	gen := &generator{
		model:      ModelDefinition{Name: "openai/gpt-4"},
		apiKey:     "test-key",
		baseURL:    server.URL,
		timeout:    5,
		structured: true,
	}

	resp, err := gen.generate(context.Background(), &ai.ModelRequest{
		Messages: []*ai.Message{{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart("list pods")}}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Message.Content, 1)
	assert.Equal(t, `{"cypher":"MATCH (n) RETURN n"}`, resp.Message.Content[0].Text)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestOpenRouterGenerateUnstructuredOmitsResponseFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req chatRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Nil(t, req.ResponseFormat)

		resp := chatResponse{Choices: []choice{{Message: &chatMessage{Role: "assistant", Content: "cypher: MATCH (n) RETURN n"}}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	gen := &generator{model: ModelDefinition{Name: "openai/gpt-4"}, apiKey: "k", baseURL: server.URL, timeout: 5}
	resp, err := gen.generate(context.Background(), &ai.ModelRequest{
		Messages: []*ai.Message{{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart("list pods")}}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "cypher: MATCH (n) RETURN n", resp.Message.Content[0].Text)
}

func TestOpenRouterGenerateReturnsErrorOnNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	gen := &generator{model: ModelDefinition{Name: "openai/gpt-4"}, apiKey: "k", baseURL: server.URL, timeout: 5}
	_, err := gen.generate(context.Background(), &ai.ModelRequest{
		Messages: []*ai.Message{{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart("hi")}}},
	}, nil)
	require.Error(t, err)
}

func TestConvertMessagesMapsRoles(t *testing.T) {
	messages := []*ai.Message{
		{Role: ai.RoleSystem, Content: []*ai.Part{ai.NewTextPart("system prompt")}},
		{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart("question")}},
		{Role: ai.RoleModel, Content: []*ai.Part{ai.NewTextPart("answer")}},
	}

	converted := convertMessages(messages)
	require.Len(t, converted, 3)
	assert.Equal(t, "system", converted[0].Role)
	assert.Equal(t, "user", converted[1].Role)
	assert.Equal(t, "assistant", converted[2].Role)
	assert.Equal(t, "answer", converted[2].Content)
}

func TestTranslateStreamChunkSkipsEmptyDeltas(t *testing.T) {
	assert.Nil(t, translateStreamChunk(&streamChunk{Choices: []choice{{Delta: &chatMessage{Content: ""}}}}))
	assert.Nil(t, translateStreamChunk(&streamChunk{Choices: nil}))

	chunk := translateStreamChunk(&streamChunk{Choices: []choice{{Delta: &chatMessage{Content: "partial"}}}})
	require.NotNil(t, chunk)
	assert.Equal(t, "partial", chunk.Content[0].Text)
}
