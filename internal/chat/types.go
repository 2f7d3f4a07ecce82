// Package chat implements the streaming conversation engine: the active
// conversation state machine, the directory of saved sessions, and the title
// summarizer. External collaborators (completion backend, persistence,
// search) are consumed through the narrow interfaces declared here.
package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Role identifies the sender of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. The ID is assigned at creation and
// never changes; stream fragments are routed to a turn by ID, not position.
type Turn struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// NewTurn creates a turn with a fresh ID.
func NewTurn(role Role, text string) Turn {
	return Turn{ID: uuid.NewString(), Role: role, Text: text}
}

// Session is a frozen, titled conversation retained for later reloading.
// Immutable once created.
type Session struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Transcript []Turn `json:"transcript"`
}

// CloneTurns returns an independent copy of a turn slice. Turns are value
// types, so a slice copy is a deep copy.
func CloneTurns(turns []Turn) []Turn {
	if turns == nil {
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// RenderTranscript joins all turn texts in order with single spaces. This is
// the exact shape handed to the summarizer.
func RenderTranscript(turns []Turn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// CompletionRequest carries everything a provider needs for one call.
type CompletionRequest struct {
	System      string
	Messages    []Turn
	MaxTokens   int
	Temperature float32
}

// LLMClient abstracts the completion backend SDK (OpenAI, Anthropic, etc.).
//
// Stream returns a lazy, finite, non-restartable sequence of text fragments
// on the first channel. The error channel carries exactly one terminal value
// before both channels close: nil for a clean end of stream, non-nil for an
// early abort. Fragments must be surfaced as they arrive, in order.
//
// Complete performs a single non-streaming call and returns the full
// assistant text.
type LLMClient interface {
	Stream(ctx context.Context, req CompletionRequest) (<-chan string, <-chan error)
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// SessionStore persists the full session directory as one atomic document.
// LoadAll returns an empty slice (not an error) when nothing has been
// persisted yet.
type SessionStore interface {
	LoadAll() ([]Session, error)
	SaveAll(sessions []Session) error
}

// SessionIndex is an optional full-text index over saved sessions. Search
// returns matching session IDs, best first.
type SessionIndex interface {
	Add(s Session) error
	Search(query string, limit int) ([]string, error)
}
