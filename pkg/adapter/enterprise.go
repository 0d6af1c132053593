package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// EnterpriseAdapter talks to an internally hosted, OpenAI-compatible
// gateway. It backs the last-resort fallback path: deployments that
// cannot reach commercial APIs usually still have this endpoint.
type EnterpriseAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type enterpriseRequest struct {
	Model       string              `json:"model"`
	Messages    []enterpriseMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type enterpriseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type enterpriseResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewEnterpriseAdapter creates an adapter for the enterprise gateway.
func NewEnterpriseAdapter(baseURL, apiKey string) (*EnterpriseAdapter, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("enterprise gateway URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("enterprise gateway API key is required")
	}

	return &EnterpriseAdapter{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}, nil
}

// Name returns the adapter identifier.
func (a *EnterpriseAdapter) Name() string {
	return "enterprise"
}

// Models returns the models exposed by the gateway.
func (a *EnterpriseAdapter) Models() []string {
	return []string{
		"enterprise-chat",
		"enterprise-reasoner",
	}
}

// Generate sends a prompt to the gateway and returns the response.
func (a *EnterpriseAdapter) Generate(ctx context.Context, model string, prompt string) (*Response, error) {
	reqBody := enterpriseRequest{
		Model: model,
		Messages: []enterpriseMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: 1024,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Temporary: true, Err: fmt.Errorf("enterprise gateway request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var gatewayResp enterpriseResponse
	if err := json.Unmarshal(body, &gatewayResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if gatewayResp.Error != nil {
		return nil, &ProviderError{Status: resp.StatusCode, Err: fmt.Errorf("enterprise gateway error: %s (type: %s, code: %s)",
			gatewayResp.Error.Message, gatewayResp.Error.Type, gatewayResp.Error.Code)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Status: resp.StatusCode, Err: fmt.Errorf("enterprise gateway returned status %d: %s", resp.StatusCode, string(body))}
	}

	if len(gatewayResp.Choices) == 0 {
		return nil, fmt.Errorf("enterprise gateway returned no choices")
	}

	return &Response{
		Content: gatewayResp.Choices[0].Message.Content,
		Adapter: a.Name(),
		Model:   model,
		Usage: &Usage{
			PromptTokens:     gatewayResp.Usage.PromptTokens,
			CompletionTokens: gatewayResp.Usage.CompletionTokens,
			TotalTokens:      gatewayResp.Usage.TotalTokens,
		},
	}, nil
}
