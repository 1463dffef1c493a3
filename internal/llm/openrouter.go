// Package llm also carries the OpenRouter-backed Genkit plugin, the
// concrete transport the translator, router and analyst calls run over.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
)

const (
	openRouterProvider = "openrouter"
	openRouterBaseURL  = "https://openrouter.ai/api/v1"
)

var openRouterRoles = map[ai.Role]string{
	ai.RoleUser:   "user",
	ai.RoleModel:  "assistant",
	ai.RoleSystem: "system",
}

// OpenRouter configures the plugin. Unlike the upstream plugin this
// drops the SiteName/SiteURL analytics headers, which have no use here.
// Structured output is chosen per model through DefineModel's structured
// argument, which callers resolve with StructuredOutputEnabled.
type OpenRouter struct {
	// APIKey is the OpenRouter API key. If empty, reads OPENROUTER_API_KEY.
	APIKey string
	// BaseURL defaults to https://openrouter.ai/api/v1.
	BaseURL string
	// Timeout is the request timeout in seconds, defaulting to 120.
	Timeout int

	mu      sync.Mutex
	initted bool
}

func (o *OpenRouter) Name() string { return openRouterProvider }

func (o *OpenRouter) Init(ctx context.Context) []api.Action {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.initted {
		panic("openrouter.Init already called")
	}
	if o.APIKey == "" {
		o.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if o.APIKey == "" {
		panic("openrouter: need APIKey or OPENROUTER_API_KEY environment variable")
	}
	if o.BaseURL == "" {
		o.BaseURL = openRouterBaseURL
	}
	if o.Timeout == 0 {
		o.Timeout = 120
	}
	o.initted = true
	return []api.Action{}
}

// ModelDefinition names the OpenRouter model ID to call.
type ModelDefinition struct {
	Name  string
	Label string
}

// DefineModel registers a model with Genkit. structured controls whether
// generate requests set response_format to json_object; callers resolve
// this once per model via StructuredOutputEnabled(cfg).
func (o *OpenRouter) DefineModel(g *genkit.Genkit, model ModelDefinition, structured bool) ai.Model {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.initted {
		panic("openrouter.DefineModel: Init not called")
	}

	label := model.Label
	if label == "" {
		label = "OpenRouter - " + model.Name
	}
	meta := &ai.ModelOptions{
		Label: label,
		Supports: &ai.ModelSupports{
			Multiturn:  true,
			SystemRole: true,
		},
	}

	gen := &generator{
		model:      model,
		apiKey:     o.APIKey,
		baseURL:    o.BaseURL,
		timeout:    o.Timeout,
		structured: structured,
	}

	return genkit.DefineModel(g, api.NewName(openRouterProvider, model.Name), meta, gen.generate)
}

// IsDefinedModel reports whether a model is defined.
func IsDefinedModel(g *genkit.Genkit, name string) bool {
	return genkit.LookupModel(g, api.NewName(openRouterProvider, name)) != nil
}

// Model returns the registered [ai.Model] with the given name.
func Model(g *genkit.Genkit, name string) ai.Model {
	return genkit.LookupModel(g, api.NewName(openRouterProvider, name))
}

type generator struct {
	model      ModelDefinition
	apiKey     string
	baseURL    string
	timeout    int
	structured bool
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Stream         bool            `json:"stream,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	Stop           []string        `json:"stop,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []choice `json:"choices"`
	Usage   *usage   `json:"usage,omitempty"`
}

type choice struct {
	Message      *chatMessage `json:"message,omitempty"`
	Delta        *chatMessage `json:"delta,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type streamChunk struct {
	Choices []choice `json:"choices"`
}

func (g *generator) generate(ctx context.Context, input *ai.ModelRequest, cb func(context.Context, *ai.ModelResponseChunk) error) (*ai.ModelResponse, error) {
	stream := cb != nil

	req := chatRequest{
		Model:    g.model.Name,
		Messages: convertMessages(input.Messages),
		Stream:   stream,
	}
	if g.structured {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	if cfg, ok := input.Config.(*ai.GenerationCommonConfig); ok && cfg != nil {
		if cfg.Temperature != 0 {
			t := cfg.Temperature
			req.Temperature = &t
		}
		if cfg.TopP != 0 {
			p := cfg.TopP
			req.TopP = &p
		}
		if cfg.MaxOutputTokens != 0 {
			m := cfg.MaxOutputTokens
			req.MaxTokens = &m
		}
		if len(cfg.StopSequences) > 0 {
			req.Stop = cfg.StopSequences
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openrouter: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	client := &http.Client{Timeout: time.Duration(g.timeout) * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter: send request: %w", err)
	}
	defer resp.Body.Close()

	if stream {
		return g.handleStreamingResponse(ctx, input, resp, cb)
	}
	return g.handleNonStreamingResponse(input, resp)
}

func (g *generator) handleNonStreamingResponse(input *ai.ModelRequest, resp *http.Response) (*ai.ModelResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openrouter: read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter: API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("openrouter: parse response: %w", err)
	}
	return translateResponse(&chatResp, input)
}

func (g *generator) handleStreamingResponse(ctx context.Context, input *ai.ModelRequest, resp *http.Response, cb func(context.Context, *ai.ModelResponseChunk) error) (*ai.ModelResponse, error) {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openrouter: API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chunks []*ai.ModelResponseChunk
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line == "data: [DONE]" {
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var streamResp streamChunk
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &streamResp); err != nil {
			continue
		}
		chunk := translateStreamChunk(&streamResp)
		if chunk == nil {
			continue
		}
		chunks = append(chunks, chunk)
		if err := cb(ctx, chunk); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("openrouter: read stream: %w", err)
	}

	final := &ai.ModelResponse{
		Request:      input,
		FinishReason: ai.FinishReason("stop"),
		Message:      &ai.Message{Role: ai.RoleModel},
	}
	for _, chunk := range chunks {
		final.Message.Content = append(final.Message.Content, chunk.Content...)
	}
	return final, nil
}

func convertMessages(messages []*ai.Message) []chatMessage {
	result := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		role := openRouterRoles[msg.Role]
		if role == "" {
			role = "user"
		}
		var text strings.Builder
		for _, part := range msg.Content {
			if part.IsText() {
				text.WriteString(part.Text)
			}
		}
		result = append(result, chatMessage{Role: role, Content: text.String()})
	}
	return result
}

func translateResponse(resp *chatResponse, input *ai.ModelRequest) (*ai.ModelResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, errors.New("openrouter: no choices in response")
	}
	choice := resp.Choices[0]
	modelResp := &ai.ModelResponse{
		Request:      input,
		FinishReason: ai.FinishReason(choice.FinishReason),
		Message:      &ai.Message{Role: ai.RoleModel},
	}
	if choice.Message != nil && choice.Message.Content != "" {
		modelResp.Message.Content = append(modelResp.Message.Content, ai.NewTextPart(choice.Message.Content))
	}
	if resp.Usage != nil {
		modelResp.Usage = &ai.GenerationUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}
	return modelResp, nil
}

func translateStreamChunk(chunk *streamChunk) *ai.ModelResponseChunk {
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
		return nil
	}
	delta := chunk.Choices[0].Delta
	if delta.Content == "" {
		return nil
	}
	return &ai.ModelResponseChunk{Content: []*ai.Part{ai.NewTextPart(delta.Content)}}
}
