package chat

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Directory holds the saved sessions for the lifetime of the process. It is
// loaded from the store once at construction and thereafter acts as the
// source of truth: every append is mirrored to the store best-effort, and a
// failed write never rolls back the in-memory copy.
type Directory struct {
	mu       sync.Mutex
	sessions []Session
	store    SessionStore
	index    SessionIndex // may be nil
	logger   *zap.Logger
}

// LoadDirectory reads the persisted sessions and builds the directory. A
// failed read is a cold start: the directory comes up empty and the error is
// logged, never surfaced. The optional index is populated with whatever
// loaded.
func LoadDirectory(store SessionStore, index SessionIndex, logger *zap.Logger) *Directory {
	d := &Directory{store: store, index: index, logger: logger}

	sessions, err := store.LoadAll()
	if err != nil {
		logger.Warn("failed to load saved sessions, starting empty", zap.Error(err))
		sessions = nil
	}
	d.sessions = sessions

	if index != nil {
		for _, s := range sessions {
			if err := index.Add(s); err != nil {
				logger.Warn("failed to index session", zap.String("id", s.ID), zap.Error(err))
			}
		}
	}
	return d
}

// Append adds a session and persists the entire directory. Persistence
// failure is logged and swallowed; the in-memory directory keeps the
// session regardless.
func (d *Directory) Append(s Session) {
	d.mu.Lock()
	d.sessions = append(d.sessions, s)
	snapshot := d.snapshotLocked()
	d.mu.Unlock()

	if d.index != nil {
		if err := d.index.Add(s); err != nil {
			d.logger.Warn("failed to index session", zap.String("id", s.ID), zap.Error(err))
		}
	}

	if err := d.store.SaveAll(snapshot); err != nil {
		d.logger.Warn("failed to persist sessions", zap.Error(err))
	}
}

// Get returns an independent copy of the named session.
func (d *Directory) Get(id string) (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.sessions {
		if s.ID == id {
			return cloneSession(s), true
		}
	}
	return Session{}, false
}

// List returns copies of all sessions in insertion order.
func (d *Directory) List() []Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Len reports the number of saved sessions.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// Search runs a full-text query over saved transcripts and returns matching
// sessions, best first. Requires an index.
func (d *Directory) Search(query string, limit int) ([]Session, error) {
	if d.index == nil {
		return nil, fmt.Errorf("session search is not enabled")
	}

	ids, err := d.index.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("session search failed: %w", err)
	}

	results := make([]Session, 0, len(ids))
	for _, id := range ids {
		if s, ok := d.Get(id); ok {
			results = append(results, s)
		}
	}
	return results, nil
}

func (d *Directory) snapshotLocked() []Session {
	out := make([]Session, len(d.sessions))
	for i, s := range d.sessions {
		out[i] = cloneSession(s)
	}
	return out
}

func cloneSession(s Session) Session {
	s.Transcript = CloneTurns(s.Transcript)
	return s
}
