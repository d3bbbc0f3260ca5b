// Package openairesponses implements caravan.Provider on top of the OpenAI
// Responses API, used for reasoning models (o3, o3-pro) that are not served
// through chat completions.
package openairesponses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	caravan "github.com/nevindra/caravan"
)

// Provider calls POST {baseURL}/responses. The system message of each
// request becomes the instructions field; the remaining messages form the
// input list.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	name    string
}

// NewProvider creates a Responses API provider. baseURL is the API base
// (e.g. "https://api.openai.com/v1").
func NewProvider(apiKey, model, baseURL string, opts ...ProviderOption) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{},
		name:    "openai-responses",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProviderOption configures a Provider instance.
type ProviderOption func(*Provider)

// WithName sets the provider name returned by Name().
func WithName(name string) ProviderOption {
	return func(p *Provider) { p.name = name }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *Provider) { p.client = c }
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.name }

// --- Wire types ---

type request struct {
	Model        string      `json:"model"`
	Instructions string      `json:"instructions,omitempty"`
	Input        []inputItem `json:"input"`
	Reasoning    *reasoning  `json:"reasoning,omitempty"`
}

type inputItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type reasoning struct {
	Effort string `json:"effort"`
}

type response struct {
	Output []outputItem `json:"output"`
	Usage  *usage       `json:"usage,omitempty"`
	Error  *apiError    `json:"error,omitempty"`
}

type outputItem struct {
	Type    string         `json:"type"` // "message", "reasoning"
	Content []contentBlock `json:"content,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"` // "output_text", "refusal"
	Text string `json:"text,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type apiError struct {
	Message string `json:"message"`
}

// Chat sends the request through the Responses API. Tools and structured
// output are not supported here; the fan-out never asks reasoning models
// for either.
func (p *Provider) Chat(ctx context.Context, req caravan.ChatRequest) (caravan.ChatResponse, error) {
	body := request{Model: p.model}
	for _, m := range req.Messages {
		if m.Role == "system" {
			body.Instructions = m.Content
			continue
		}
		body.Input = append(body.Input, inputItem{Role: m.Role, Content: m.Content})
	}
	if req.GenerationParams != nil && req.GenerationParams.ReasoningEffort != "" {
		body.Reasoning = &reasoning{Effort: req.GenerationParams.ReasoningEffort}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return caravan.ChatResponse{}, &caravan.ErrLLM{Provider: p.name, Message: fmt.Sprintf("marshal request: %v", err)}
	}

	url := p.baseURL + "/responses"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return caravan.ChatResponse{}, &caravan.ErrLLM{Provider: p.name, Message: fmt.Sprintf("create request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return caravan.ChatResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return caravan.ChatResponse{}, &caravan.ErrHTTP{Status: resp.StatusCode, Body: string(raw)}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return caravan.ChatResponse{}, &caravan.ErrLLM{Provider: p.name, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if out.Error != nil {
		return caravan.ChatResponse{}, &caravan.ErrLLM{Provider: p.name, Message: out.Error.Message}
	}

	var result caravan.ChatResponse
	for _, item := range out.Output {
		if item.Type != "message" {
			continue
		}
		for _, block := range item.Content {
			if block.Type == "output_text" {
				result.Content += block.Text
			}
		}
	}
	if out.Usage != nil {
		result.Usage = caravan.Usage{InputTokens: out.Usage.InputTokens, OutputTokens: out.Usage.OutputTokens}
	}
	return result, nil
}

// Compile-time interface check.
var _ caravan.Provider = (*Provider)(nil)
