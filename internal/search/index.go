// Package search maintains an in-memory full-text index over saved
// sessions. The index is rebuilt from the store on startup and is never
// persisted itself.
package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/evry-ai/evry/internal/chat"
)

// sessionDoc is the indexed projection of a session.
type sessionDoc struct {
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
}

// Index is a bleve-backed implementation of chat.SessionIndex.
type Index struct {
	idx bleve.Index
}

// NewIndex builds an empty mem-only index.
func NewIndex() (*Index, error) {
	textField := bleve.NewTextFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("transcript", textField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// Add indexes a session under its id, replacing any previous entry.
func (i *Index) Add(s chat.Session) error {
	doc := sessionDoc{
		Title:      s.Title,
		Transcript: chat.RenderTranscript(s.Transcript),
	}
	if err := i.idx.Index(s.ID, doc); err != nil {
		return fmt.Errorf("failed to index session %s: %w", s.ID, err)
	}
	return nil
}

// Search returns the ids of the best-matching sessions, most relevant
// first.
func (i *Index) Search(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.idx.Close()
}
