// Package store provides the persistence backends for the session
// directory. Both backends are whole-document: SaveAll atomically replaces
// everything that was persisted before.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"

	"github.com/evry-ai/evry/internal/chat"
)

const sessionsFileName = "sessions.json"

// directoryDocument is the on-disk shape of the session directory.
type directoryDocument struct {
	Sessions []chat.Session `json:"sessions"`
}

// directorySchema guards against hand-edited or truncated files being
// half-read into memory; a document that fails validation is rejected as a
// whole.
const directorySchema = `{
  "type": "object",
  "required": ["sessions"],
  "properties": {
    "sessions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "transcript"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "transcript": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "role", "text"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "role": {"enum": ["user", "assistant"]},
                "text": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

// JSONStore persists the directory as a single JSON document.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store writing to sessions.json inside dir.
func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{path: filepath.Join(dir, sessionsFileName)}
}

// Path returns the absolute location of the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

// LoadAll implements chat.SessionStore. A missing file is a cold start,
// not an error.
func (s *JSONStore) LoadAll() ([]chat.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(directorySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate session file: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("session file does not match schema: %v", result.Errors())
	}

	var doc directoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session file: %w", err)
	}
	return doc.Sessions, nil
}

// SaveAll implements chat.SessionStore. The document is written to a
// temporary file and renamed into place so a crash mid-write never leaves
// a truncated directory behind.
func (s *JSONStore) SaveAll(sessions []chat.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Nil slices marshal as null, which the schema would reject on the
	// next load; normalize them so the document always round-trips.
	doc := directoryDocument{Sessions: make([]chat.Session, len(sessions))}
	for i, s := range sessions {
		if s.Transcript == nil {
			s.Transcript = []chat.Turn{}
		}
		doc.Sessions[i] = s
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
