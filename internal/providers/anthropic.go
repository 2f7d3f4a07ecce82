package providers

import (
	"context"
	"fmt"

	"github.com/evry-ai/evry/internal/chat"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// anthropicDefaultMaxTokens applies when the request does not cap output;
// the Messages API requires an explicit value.
const anthropicDefaultMaxTokens = 4096

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a client for the given model.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		model:  model,
	}
}

// Complete implements chat.LLMClient.
func (c *AnthropicClient) Complete(ctx context.Context, req chat.CompletionRequest) (string, error) {
	resp, err := c.client.CreateMessages(ctx, c.buildRequest(req))
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text += *block.Text
		}
	}
	return text, nil
}

// Stream implements chat.LLMClient. The SDK streams via callbacks invoked
// during CreateMessagesStream; they are adapted to the fragment channel
// here.
func (c *AnthropicClient) Stream(ctx context.Context, req chat.CompletionRequest) (<-chan string, <-chan error) {
	out := make(chan string, 10)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		var streamErr error

		streamReq := anthropic.MessagesStreamRequest{
			MessagesRequest: c.buildRequest(req),
		}
		streamReq.OnError = func(resp anthropic.ErrorResponse) {
			if resp.Error != nil {
				streamErr = fmt.Errorf("anthropic stream failed: %s", resp.Error.Message)
			}
		}
		streamReq.OnContentBlockDelta = func(delta anthropic.MessagesEventContentBlockDeltaData) {
			if delta.Delta.Type == "text_delta" && delta.Delta.Text != nil && *delta.Delta.Text != "" {
				select {
				case out <- *delta.Delta.Text:
				case <-ctx.Done():
				}
			}
		}

		if _, err := c.client.CreateMessagesStream(ctx, streamReq); err != nil {
			errs <- fmt.Errorf("anthropic stream failed: %w", err)
			return
		}
		if streamErr != nil {
			errs <- streamErr
			return
		}
		errs <- nil
	}()

	return out, errs
}

func (c *AnthropicClient) buildRequest(req chat.CompletionRequest) anthropic.MessagesRequest {
	msgs := make([]anthropic.Message, 0, len(req.Messages))
	for _, t := range req.Messages {
		role := anthropic.RoleUser
		if t.Role == chat.RoleAssistant {
			role = anthropic.RoleAssistant
		}
		msgs = append(msgs, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(t.Text)},
		})
	}

	maxTokens := anthropicDefaultMaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	r := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		Messages:  msgs,
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		r.Temperature = &temp
	}
	if req.System != "" {
		r.MultiSystem = []anthropic.MessageSystemPart{{Type: "text", Text: req.System}}
	}
	return r
}
