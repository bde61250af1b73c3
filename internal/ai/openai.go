package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const chatCompletionsPath = "/v1/chat/completions"

// OpenAIProvider implements Engine over the OpenAI chat completions endpoint.
type OpenAIProvider struct {
	client      *resty.Client
	model       string
	temperature float32
}

func NewOpenAIProvider(baseURL, apiKey, model string, temperature float32) *OpenAIProvider {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey).
		SetTimeout(60 * time.Second)
	return &OpenAIProvider{client: c, model: model, temperature: temperature}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends prompt as a single user message and returns the reply text.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:          p.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    p.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var cr chatResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		SetResult(&cr).
		SetError(&cr).
		Post(chatCompletionsPath)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("openai: %w", ctx.Err())
		}
		return "", fmt.Errorf("openai: do request: %w: %w", ErrUnreachable, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
	case code >= 500, code == http.StatusTooManyRequests, code == http.StatusUnauthorized, code == http.StatusForbidden:
		return "", fmt.Errorf("openai: status %d: %w", code, ErrUnreachable)
	default:
		msg := resp.String()
		if cr.Error != nil {
			msg = cr.Error.Message
		}
		return "", fmt.Errorf("openai: status %d: %s", code, msg)
	}

	if cr.Error != nil {
		return "", fmt.Errorf("openai: api error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("openai: API returned empty choices array")
	}
	return CleanJSON(cr.Choices[0].Message.Content), nil
}
