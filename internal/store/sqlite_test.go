package store

import (
	"path/filepath"
	"testing"

	"github.com/evry-ai/evry/internal/chat"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreEmptyDatabase(t *testing.T) {
	s := newTestSQLiteStore(t)

	sessions, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected empty directory, got %d sessions", len(sessions))
	}
}

func TestSQLiteStoreRoundtrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	want := sampleSessions()

	if err := s.SaveAll(want); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	if got[0].ID != "s1" || got[1].ID != "s2" {
		t.Fatalf("session order not preserved: %q, %q", got[0].ID, got[1].ID)
	}
	if len(got[0].Transcript) != 2 {
		t.Fatalf("transcript lost: %d turns", len(got[0].Transcript))
	}
	first := got[0].Transcript[0]
	if first.ID != "t1" || first.Role != chat.RoleUser || first.Text != "hello" {
		t.Fatalf("unexpected first turn: %+v", first)
	}
}

func TestSQLiteStoreSaveReplacesDocument(t *testing.T) {
	s := newTestSQLiteStore(t)

	if err := s.SaveAll(sampleSessions()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if err := s.SaveAll([]chat.Session{{ID: "s9", Title: "replaced"}}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s9" {
		t.Fatalf("expected only s9, got %+v", got)
	}
	if len(got[0].Transcript) != 0 {
		t.Fatalf("stale turns survived replacement: %+v", got[0].Transcript)
	}
}

func TestSQLiteStorePreservesTurnOrder(t *testing.T) {
	s := newTestSQLiteStore(t)

	sess := chat.Session{ID: "s1", Title: "ordered"}
	for _, text := range []string{"a", "b", "c", "d"} {
		sess.Transcript = append(sess.Transcript, chat.NewTurn(chat.RoleUser, text))
	}
	if err := s.SaveAll([]chat.Session{sess}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	var texts []string
	for _, turn := range got[0].Transcript {
		texts = append(texts, turn.Text)
	}
	if len(texts) != 4 || texts[0] != "a" || texts[3] != "d" {
		t.Fatalf("turn order not preserved: %v", texts)
	}
}
