// Package llmsvc implements llm.Client for the hosted completion APIs.
package llmsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/trezcool/darslik/core/llm"
)

// schemaMode is how an OpenAI-compatible endpoint is asked for structured output.
type schemaMode int

const (
	// json_schema response format, enforced by the endpoint
	schemaModeNative schemaMode = iota
	// json_object response format, the schema is sent in the system prompt
	schemaModePrompt
)

// OpenAIClient talks to OpenAI and to the OpenAI-compatible APIs (Groq, DeepSeek, custom endpoints).
type OpenAIClient struct {
	client *openai.Client
	model  string
	mode   schemaMode
}

var _ llm.Client = (*OpenAIClient)(nil)

func newOpenAIClient(apiKey, baseURL, model string, mode schemaMode) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
		mode:   mode,
	}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            buildOpenAIMessages(req, c.mode),
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}

	if req.Schema != nil {
		switch c.mode {
		case schemaModeNative:
			schemaBytes, err := json.Marshal(req.Schema.Definition)
			if err != nil {
				return nil, fmt.Errorf("marshal schema: %w", err)
			}
			chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
					Name:        req.Schema.Name,
					Description: req.Schema.Description,
					Schema:      json.RawMessage(schemaBytes),
					Strict:      true,
				},
			}
		case schemaModePrompt:
			chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			}
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &llm.ErrInvalidResponse{Err: fmt.Errorf("no choices in response")}
	}

	choice := resp.Choices[0]
	content := choice.Message.Content
	stopReason := mapOpenAIStopReason(choice.FinishReason)
	if req.Schema != nil {
		if stopReason == stopMaxTokens {
			return nil, &llm.ErrMaxTokensExceeded{Content: content}
		}
		content = trimJSONFence(content)
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &llm.Response{
		Content: content,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: stopReason,
	}, nil
}

func (c *OpenAIClient) ModelID() string {
	return c.model
}

func buildOpenAIMessages(req llm.Request, mode schemaMode) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	system := req.System
	if req.Schema != nil && mode == schemaModePrompt {
		system = withSchemaInstructions(system, req.Schema)
	}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == llm.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	return messages
}

func mapOpenAIStopReason(reason openai.FinishReason) string {
	if reason == openai.FinishReasonLength {
		return stopMaxTokens
	}
	return stopEnd
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return mapStatus(apiErr.HTTPStatusCode, nil, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return mapStatus(reqErr.HTTPStatusCode, nil, err)
	}
	return &llm.ErrProviderUnavailable{Err: err}
}

// mapStatus classifies a failed call by its HTTP status. header may be nil.
func mapStatus(status int, header http.Header, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &llm.ErrRateLimit{RetryAfter: retryAfter(header, time.Now()), Err: err}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &llm.ErrAuthentication{Err: err}
	default:
		return &llm.ErrProviderUnavailable{Err: err}
	}
}

// retryAfter reads the Retry-After header, in seconds or as an HTTP date; zero when absent or invalid.
func retryAfter(header http.Header, now time.Time) time.Duration {
	v := strings.TrimSpace(header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
