package chat

import (
	"strings"
	"sync"
)

// Status is the input-gating state of the active conversation.
type Status int

const (
	// StatusIdle accepts new submissions.
	StatusIdle Status = iota
	// StatusAwaiting means one assistant turn is being filled by a stream;
	// further submissions are rejected until the stream ends.
	StatusAwaiting
)

// ErrorReply replaces the pending assistant turn's text wholesale when the
// completion stream fails. Replaced, not appended: a partial answer followed
// by an apology reads as model output.
const ErrorReply = "Sorry, something went wrong."

// Conversation owns the ordered turn list of the active chat and the
// idle/awaiting status. All mutation goes through its methods; each method
// serializes against the others via the internal mutex, so triggers
// (submit, fragment, end, error, reset, replace) are processed one at a
// time as required by the concurrency model.
//
// The zero value is not usable; call NewConversation.
type Conversation struct {
	mu      sync.Mutex
	turns   []Turn
	status  Status
	target  string // ID of the assistant turn the current stream writes to
	closing bool   // a Freeze is pending Reset; all other triggers reject
}

// NewConversation returns an empty, idle conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Submit appends a user turn with the given text plus an empty assistant
// placeholder turn, atomically, and moves to StatusAwaiting. The returned
// assistant turn's ID is the stream target.
//
// Returns ok=false without any mutation when the text is empty or
// whitespace-only, or when a stream is already in flight. Rejection is the
// backpressure contract: at most one outstanding completion request.
func (c *Conversation) Submit(text string) (user, assistant Turn, ok bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Turn{}, Turn{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusIdle {
		return Turn{}, Turn{}, false
	}

	user = NewTurn(RoleUser, trimmed)
	assistant = NewTurn(RoleAssistant, "")
	c.turns = append(c.turns, user, assistant)
	c.target = assistant.ID
	c.status = StatusAwaiting
	return user, assistant, true
}

// AppendFragment appends a stream fragment to the turn with the given ID.
// Lookup is by identity, never by position, so turns belonging to an
// abandoned stream (after Reset or Replace) are silently skipped rather
// than corrupting an unrelated turn. Returns whether the fragment landed.
func (c *Conversation) AppendFragment(turnID, fragment string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.turns {
		if c.turns[i].ID == turnID {
			c.turns[i].Text += fragment
			return true
		}
	}
	return false
}

// EndStream marks the stream writing to turnID as cleanly finished. The
// status flips back to idle only if that stream is still the active one;
// an abandoned stream ending late is a no-op.
func (c *Conversation) EndStream(turnID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.target == turnID {
		c.target = ""
		c.status = StatusIdle
	}
}

// FailStream replaces the target turn's text with ErrorReply and unlocks
// input. This is the only path that overwrites rather than appends. Like
// EndStream, it is a no-op for streams that are no longer active.
func (c *Conversation) FailStream(turnID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.turns {
		if c.turns[i].ID == turnID {
			c.turns[i].Text = ErrorReply
			break
		}
	}
	if c.target == turnID {
		c.target = ""
		c.status = StatusIdle
	}
}

// Freeze atomically snapshots the turn list and suspends the conversation
// for a close: the status leaves idle so submissions reject, the stream
// target is cleared so an in-flight stream is abandoned, and further
// Freeze or Replace calls reject until Reset. Returns ok=false when a
// freeze is already pending, so concurrent closes collapse into one.
func (c *Conversation) Freeze() (transcript []Turn, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closing {
		return nil, false
	}
	c.closing = true
	c.target = ""
	c.status = StatusAwaiting
	return CloneTurns(c.turns), true
}

// Turns returns a copy of the turn list, safe to read while a stream is
// mutating the original.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CloneTurns(c.turns)
}

// Len reports the number of turns.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Status reports the current input-gating state.
func (c *Conversation) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Reset clears the conversation to empty and idle, ending any pending
// freeze. Any in-flight stream is implicitly abandoned; its late fragments
// will find no target.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
	c.target = ""
	c.closing = false
	c.status = StatusIdle
}

// Replace swaps the turn list for a copy of the given transcript and sets
// the status to idle, abandoning any in-flight stream. Rejected while a
// freeze is pending: the close owns the conversation until its Reset.
func (c *Conversation) Replace(transcript []Turn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closing {
		return false
	}
	c.turns = CloneTurns(transcript)
	c.target = ""
	c.status = StatusIdle
	return true
}
