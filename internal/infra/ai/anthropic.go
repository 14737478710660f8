package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// AnthropicProvider implements LLMProvider for the Anthropic messages API.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	budgetGate *BudgetGate

	mu         sync.Mutex
	usageStats UsageStats
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewAnthropicProvider creates a new Claude adapter. An empty apiKey falls
// back to the ANTHROPIC_API_KEY environment variable.
func NewAnthropicProvider(apiKey, model string, budgetGate *BudgetGate) *AnthropicProvider {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	return &AnthropicProvider{
		apiKey:     apiKey,
		baseURL:    "https://api.anthropic.com/v1/messages",
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		budgetGate: budgetGate,
	}
}

func (p *AnthropicProvider) Name() string { return "Anthropic Claude" }

// IsAvailable checks if the API key is configured.
func (p *AnthropicProvider) IsAvailable() bool { return p.apiKey != "" }

// Complete sends a completion request to Claude. The system message travels
// in the dedicated system field, everything else in the messages array.
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if !p.IsAvailable() {
		return nil, fmt.Errorf("Anthropic API key not configured")
	}

	estimatedCost := p.estimateCost(req)
	if !p.budgetGate.CanSpend(estimatedCost) {
		return nil, fmt.Errorf("budget limit exceeded: %s", p.budgetGate.GetStatus())
	}

	var systemMsg string
	var messages []anthropicMessage
	for _, m := range req.Messages {
		if m.Role == "system" {
			systemMsg = m.Content
			continue
		}
		messages = append(messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: req.MaxTokens,
		System:    systemMsg,
		Messages:  messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Anthropic error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(respBody, &anthResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(anthResp.Content) == 0 {
		return nil, fmt.Errorf("no response content returned")
	}

	totalTokens := anthResp.Usage.InputTokens + anthResp.Usage.OutputTokens
	actualCost := p.calculateCost(totalTokens, model)
	p.budgetGate.RecordSpend(actualCost)
	p.mu.Lock()
	p.usageStats.TotalRequests++
	p.usageStats.TotalTokens += totalTokens
	p.usageStats.TotalCostUSD += actualCost
	p.mu.Unlock()

	return &CompletionResponse{
		Content:      anthResp.Content[0].Text,
		Model:        anthResp.Model,
		PromptTokens: anthResp.Usage.InputTokens,
		OutputTokens: anthResp.Usage.OutputTokens,
		TotalTokens:  totalTokens,
		Latency:      latency,
		FinishReason: anthResp.StopReason,
	}, nil
}

func (p *AnthropicProvider) estimateCost(req CompletionRequest) float64 {
	estimatedTokens := 2000 + req.MaxTokens
	return p.calculateCost(estimatedTokens, p.model)
}

func (p *AnthropicProvider) calculateCost(tokens int, model string) float64 {
	switch model {
	case "claude-3-5-sonnet-20241022":
		return float64(tokens) * 0.000009
	case "claude-3-haiku-20240307":
		return float64(tokens) * 0.0000005
	default:
		return float64(tokens) * 0.00001
	}
}

// GetUsageStats returns current usage statistics.
func (p *AnthropicProvider) GetUsageStats() UsageStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats := p.usageStats
	stats.BudgetRemaining = p.budgetGate.MonthRemaining()
	return stats
}

// ResetUsage resets all usage counters.
func (p *AnthropicProvider) ResetUsage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usageStats = UsageStats{LastReset: time.Now()}
}

var _ LLMProvider = (*AnthropicProvider)(nil)
