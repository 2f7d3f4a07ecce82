package chat

import "testing"

func TestConversation_SubmitAppendsPair(t *testing.T) {
	conv := NewConversation()

	user, assistant, ok := conv.Submit("hi")
	if !ok {
		t.Fatal("Submit rejected a valid prompt")
	}
	if user.Role != RoleUser || user.Text != "hi" {
		t.Errorf("unexpected user turn: %+v", user)
	}
	if assistant.Role != RoleAssistant || assistant.Text != "" {
		t.Errorf("unexpected assistant placeholder: %+v", assistant)
	}
	if user.ID == assistant.ID {
		t.Error("user and assistant turns share an ID")
	}

	turns := conv.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].ID != user.ID || turns[1].ID != assistant.ID {
		t.Error("turns not appended in submission order")
	}
	if conv.Status() != StatusAwaiting {
		t.Error("expected StatusAwaiting after submit")
	}
}

func TestConversation_SubmitRejectsBlankInput(t *testing.T) {
	conv := NewConversation()

	for _, text := range []string{"", "   ", "\n\t "} {
		if _, _, ok := conv.Submit(text); ok {
			t.Errorf("Submit accepted blank input %q", text)
		}
	}
	if conv.Len() != 0 {
		t.Errorf("blank submissions created %d turns", conv.Len())
	}
}

func TestConversation_SubmitRejectsWhileAwaiting(t *testing.T) {
	conv := NewConversation()
	conv.Submit("first")

	if _, _, ok := conv.Submit("second"); ok {
		t.Error("Submit accepted input while awaiting a response")
	}
	if conv.Len() != 2 {
		t.Errorf("expected 2 turns after rejected submit, got %d", conv.Len())
	}
}

func TestConversation_FragmentOrdering(t *testing.T) {
	conv := NewConversation()
	_, assistant, _ := conv.Submit("hi")

	fragments := []string{"He", "", "llo", "", "!"}
	for _, f := range fragments {
		conv.AppendFragment(assistant.ID, f)
	}
	conv.EndStream(assistant.ID)

	turns := conv.Turns()
	if got := turns[1].Text; got != "Hello!" {
		t.Errorf("expected lossless concatenation %q, got %q", "Hello!", got)
	}
	if conv.Status() != StatusIdle {
		t.Error("expected StatusIdle after end of stream")
	}
}

func TestConversation_FragmentTargetsByIdentityNotPosition(t *testing.T) {
	conv := NewConversation()
	_, assistant, _ := conv.Submit("hi")

	// Fragments keep landing on the same turn even after the list grows.
	conv.AppendFragment(assistant.ID, "He")
	conv.EndStream(assistant.ID)
	conv.Submit("more")
	conv.AppendFragment(assistant.ID, "llo")

	turns := conv.Turns()
	if turns[1].Text != "Hello" {
		t.Errorf("fragment missed its turn: %q", turns[1].Text)
	}
	if turns[3].Text != "" {
		t.Errorf("fragment leaked into the wrong turn: %q", turns[3].Text)
	}
}

func TestConversation_FragmentForMissingTurnIsNoOp(t *testing.T) {
	conv := NewConversation()
	_, assistant, _ := conv.Submit("hi")
	conv.Reset()

	if conv.AppendFragment(assistant.ID, "late") {
		t.Error("fragment landed on a turn that no longer exists")
	}
	if conv.Len() != 0 {
		t.Error("late fragment mutated a reset conversation")
	}
}

func TestConversation_FailStreamReplacesText(t *testing.T) {
	conv := NewConversation()
	_, assistant, _ := conv.Submit("hi")

	conv.AppendFragment(assistant.ID, "Hel")
	conv.FailStream(assistant.ID)

	turns := conv.Turns()
	if got := turns[1].Text; got != ErrorReply {
		t.Errorf("expected wholesale replacement with %q, got %q", ErrorReply, got)
	}
	if conv.Status() != StatusIdle {
		t.Error("expected StatusIdle after stream failure")
	}
}

func TestConversation_StaleEndStreamIsNoOp(t *testing.T) {
	conv := NewConversation()
	_, old, _ := conv.Submit("hi")
	conv.Replace([]Turn{NewTurn(RoleUser, "restored")})

	conv.EndStream(old.ID)
	conv.Submit("next")

	// The stale EndStream must not have unlocked or re-locked anything.
	if conv.Status() != StatusAwaiting {
		t.Error("stale EndStream interfered with the new stream")
	}
}

func TestConversation_ReplaceCopiesTranscript(t *testing.T) {
	conv := NewConversation()
	transcript := []Turn{NewTurn(RoleUser, "a"), NewTurn(RoleAssistant, "b")}
	conv.Replace(transcript)

	transcript[0].Text = "mutated"
	if conv.Turns()[0].Text != "a" {
		t.Error("Replace aliased the caller's slice")
	}
}

func TestConversation_FreezeSuspendsAllTriggers(t *testing.T) {
	conv := NewConversation()
	conv.Submit("hi")
	conv.EndStream(conv.Turns()[1].ID)

	transcript, ok := conv.Freeze()
	if !ok {
		t.Fatal("Freeze rejected on an idle conversation")
	}
	if len(transcript) != 2 {
		t.Fatalf("Freeze snapshot has %d turns, want 2", len(transcript))
	}

	if _, _, ok := conv.Submit("sneaky"); ok {
		t.Error("Submit accepted while frozen")
	}
	if _, ok := conv.Freeze(); ok {
		t.Error("second Freeze accepted while frozen")
	}
	if conv.Replace([]Turn{NewTurn(RoleUser, "swap")}) {
		t.Error("Replace accepted while frozen")
	}
	if got := len(conv.Turns()); got != 2 {
		t.Errorf("frozen conversation mutated: %d turns", got)
	}

	conv.Reset()
	if conv.Status() != StatusIdle {
		t.Error("expected StatusIdle after Reset")
	}
	if _, _, ok := conv.Submit("again"); !ok {
		t.Error("Submit rejected after the freeze ended")
	}
}

func TestConversation_FreezeAbandonsInFlightStream(t *testing.T) {
	conv := NewConversation()
	_, assistant, _ := conv.Submit("hi")

	if _, ok := conv.Freeze(); !ok {
		t.Fatal("Freeze rejected mid-stream")
	}

	// The frozen snapshot was taken; the old stream's terminal events must
	// not unlock the conversation out from under the close.
	conv.EndStream(assistant.ID)
	if conv.Status() != StatusAwaiting {
		t.Error("stale EndStream unlocked a frozen conversation")
	}
	conv.FailStream(assistant.ID)
	if conv.Status() != StatusAwaiting {
		t.Error("stale FailStream unlocked a frozen conversation")
	}
}
