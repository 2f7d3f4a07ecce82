// Package providers implements chat.LLMClient against the completion
// backend SDKs. Each client adapts its SDK's streaming surface to the
// engine's fragment-channel contract: fragments are pushed as they arrive
// and exactly one terminal value (nil or an error) is sent on the error
// channel before both channels close.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/evry-ai/evry/internal/chat"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIClient talks to OpenAI or any OpenAI-compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client. baseURL may be empty for the default
// endpoint, or point at an OpenAI-compatible API.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Complete implements chat.LLMClient.
func (c *OpenAIClient) Complete(ctx context.Context, req chat.CompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req, false))
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream implements chat.LLMClient.
func (c *OpenAIClient) Stream(ctx context.Context, req chat.CompletionRequest) (<-chan string, <-chan error) {
	out := make(chan string, 10) // Buffered to avoid blocking the SDK reader
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(req, true))
		if err != nil {
			errs <- fmt.Errorf("openai stream failed to start: %w", err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if err != nil {
				// The SDK sometimes wraps io.EOF; treat both as a clean end.
				if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
					errs <- nil
					return
				}
				errs <- fmt.Errorf("openai stream failed: %w", err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if delta := resp.Choices[0].Delta.Content; delta != "" {
				select {
				case out <- delta:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return out, errs
}

func (c *OpenAIClient) buildRequest(req chat.CompletionRequest, stream bool) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, t := range req.Messages {
		role := openai.ChatMessageRoleUser
		content := t.Text
		if t.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
			// The SDK may serialize an empty string as null, which the API
			// rejects; a single space is semantically equivalent.
			if content == "" {
				content = " "
			}
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: content})
	}

	r := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   stream,
	}
	if req.MaxTokens > 0 {
		r.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		r.Temperature = &temp
	}
	return r
}
