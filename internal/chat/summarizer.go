package chat

import (
	"context"
	"fmt"
	"strings"
)

// DefaultTitle names a session when summarization fails entirely.
const DefaultTitle = "New Chat"

// untitledReply names a session when the model answers but says nothing.
const untitledReply = "Unable to summarize"

const titleSystemPrompt = "Summarize the following chat into a sentence with " +
	"less than 50 characters. Detect the language of the chat and write the " +
	"summary in that same language."

// Summarizer reduces a transcript to a short session title via a single
// non-streaming completion call.
type Summarizer struct {
	llm LLMClient
}

// NewSummarizer creates a summarizer backed by the given client.
func NewSummarizer(llm LLMClient) *Summarizer {
	return &Summarizer{llm: llm}
}

// Title generates a title for the transcript. Transport and backend errors
// propagate to the caller, which supplies the DefaultTitle fallback; an
// empty answer from a successful call degrades to a fixed placeholder
// instead of an empty title.
func (s *Summarizer) Title(ctx context.Context, transcript string) (string, error) {
	resp, err := s.llm.Complete(ctx, CompletionRequest{
		System:    titleSystemPrompt,
		Messages:  []Turn{{Role: RoleUser, Text: transcript}},
		MaxTokens: 50,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate title: %w", err)
	}

	title := strings.TrimSpace(resp)
	if title == "" {
		return untitledReply, nil
	}
	return title, nil
}
