package chat

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options tunes engine behavior.
type Options struct {
	// SendHistory forwards the full turn history to the completion backend
	// instead of only the latest prompt. Off by default: the engine
	// deliberately keeps the original latest-prompt-only contract unless
	// asked otherwise.
	SendHistory bool

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int

	// Temperature for completions. Zero means provider default.
	Temperature float32
}

// Hooks let a UI observe engine activity. Both callbacks may be nil. They
// are invoked from the goroutine driving the stream, so implementations
// must not call back into the engine synchronously.
type Hooks struct {
	// OnDelta fires after each fragment lands on a turn.
	OnDelta func(turnID string)
	// OnStateChange fires after any other observable mutation: submission,
	// stream end or failure, session close, session load.
	OnStateChange func()
}

// Engine ties the conversation state machine to its three collaborators:
// the completion backend, the summarizer, and the session directory.
type Engine struct {
	conv       *Conversation
	dir        *Directory
	llm        LLMClient
	summarizer *Summarizer
	opts       Options
	hooks      Hooks
	logger     *zap.Logger
}

// NewEngine builds an engine with an empty active conversation.
func NewEngine(llm LLMClient, dir *Directory, opts Options, hooks Hooks, logger *zap.Logger) *Engine {
	return &Engine{
		conv:       NewConversation(),
		dir:        dir,
		llm:        llm,
		summarizer: NewSummarizer(llm),
		opts:       opts,
		hooks:      hooks,
		logger:     logger,
	}
}

// Send submits the user's text and drives the resulting completion stream
// to its end, mutating the pending assistant turn fragment by fragment. It
// blocks until the stream finishes or fails, so callers that need a
// responsive UI run it on its own goroutine; concurrent submissions are
// rejected by the conversation, not queued.
//
// A rejected submission (empty text or a stream already in flight) returns
// nil without side effects. A stream failure replaces the assistant turn
// with ErrorReply and returns the underlying error.
func (e *Engine) Send(ctx context.Context, text string) error {
	user, assistant, ok := e.conv.Submit(text)
	if !ok {
		return nil
	}
	e.notify()

	e.logger.Debug("completion request",
		zap.String("turn", assistant.ID),
		zap.Bool("send_history", e.opts.SendHistory))

	fragments, errs := e.llm.Stream(ctx, e.buildRequest(user))

	for fragments != nil || errs != nil {
		select {
		case f, open := <-fragments:
			if !open {
				fragments = nil
				continue
			}
			if f == "" {
				continue
			}
			e.conv.AppendFragment(assistant.ID, f)
			if e.hooks.OnDelta != nil {
				e.hooks.OnDelta(assistant.ID)
			}
		case err, open := <-errs:
			if !open {
				errs = nil
				continue
			}
			if err != nil {
				e.logger.Warn("completion stream failed",
					zap.String("turn", assistant.ID), zap.Error(err))
				e.conv.FailStream(assistant.ID)
				e.notify()
				return err
			}
			errs = nil
		}
	}

	e.conv.EndStream(assistant.ID)
	e.notify()
	return nil
}

// buildRequest assembles the provider request for the just-submitted user
// turn. In history mode every turn up to and including it is forwarded; the
// trailing assistant placeholder is never sent.
func (e *Engine) buildRequest(user Turn) CompletionRequest {
	req := CompletionRequest{
		MaxTokens:   e.opts.MaxTokens,
		Temperature: e.opts.Temperature,
	}

	if !e.opts.SendHistory {
		req.Messages = []Turn{user}
		return req
	}

	turns := e.conv.Turns()
	for _, t := range turns {
		if t.Role == RoleAssistant && t.Text == "" {
			continue
		}
		req.Messages = append(req.Messages, t)
	}
	return req
}

// CloseSession freezes the active conversation into a new saved session,
// derives its title, persists the whole directory, and resets the active
// conversation to empty. An empty conversation is never persisted; the
// reset still happens. Closing mid-stream abandons the stream: its late
// fragments find no target and are dropped.
//
// The freeze suspends the conversation for the whole close, including the
// title request: submissions arriving meanwhile are rejected, not queued,
// and a second concurrent close is a no-op.
//
// Returns the created session, or nil when nothing was saved.
func (e *Engine) CloseSession(ctx context.Context) *Session {
	transcript, ok := e.conv.Freeze()
	if !ok {
		return nil
	}
	if len(transcript) == 0 {
		e.conv.Reset()
		e.notify()
		return nil
	}

	title, err := e.summarizer.Title(ctx, RenderTranscript(transcript))
	if err != nil {
		e.logger.Warn("title generation failed, using fallback", zap.Error(err))
		title = DefaultTitle
	}

	session := Session{
		ID:         uuid.NewString(),
		Title:      title,
		Transcript: transcript,
	}
	e.dir.Append(session)

	e.logger.Info("session saved",
		zap.String("id", session.ID),
		zap.String("title", session.Title),
		zap.Int("turns", len(session.Transcript)))

	e.conv.Reset()
	e.notify()
	return &session
}

// LoadSession replaces the active conversation with a copy of the named
// session's transcript. The directory is untouched. Loading mid-stream is
// allowed and abandons the in-flight stream; loading mid-close is not, the
// close owns the conversation until it finishes. Returns false for an
// unknown ID or a rejected load, leaving the active conversation as it was.
func (e *Engine) LoadSession(id string) bool {
	session, ok := e.dir.Get(id)
	if !ok {
		return false
	}
	if !e.conv.Replace(session.Transcript) {
		return false
	}
	e.notify()
	return true
}

// Turns returns a copy of the active conversation's turns.
func (e *Engine) Turns() []Turn { return e.conv.Turns() }

// Status reports whether the engine is idle or awaiting a response.
func (e *Engine) Status() Status { return e.conv.Status() }

// Directory exposes the saved-session directory for listing and search.
func (e *Engine) Directory() *Directory { return e.dir }

func (e *Engine) notify() {
	if e.hooks.OnStateChange != nil {
		e.hooks.OnStateChange()
	}
}
