package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evry-ai/evry/internal/chat"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexFindsByTitle(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Add(chat.Session{ID: "s1", Title: "Planning a trip to Lisbon"}))
	require.NoError(t, idx.Add(chat.Session{ID: "s2", Title: "Sourdough starter questions"}))

	ids, err := idx.Search("lisbon", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestIndexFindsByTranscript(t *testing.T) {
	idx := newTestIndex(t)

	s := chat.Session{
		ID:    "s1",
		Title: "New Chat",
		Transcript: []chat.Turn{
			{ID: "t1", Role: chat.RoleUser, Text: "how do I tune a banjo"},
			{ID: "t2", Role: chat.RoleAssistant, Text: "start with the fifth string"},
		},
	}
	require.NoError(t, idx.Add(s))

	ids, err := idx.Search("banjo", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestIndexAddReplacesEntry(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Add(chat.Session{ID: "s1", Title: "old topic"}))
	require.NoError(t, idx.Add(chat.Session{ID: "s1", Title: "fresh subject"}))

	ids, err := idx.Search("topic", 10)
	require.NoError(t, err)
	assert.Empty(t, ids, "stale entry still indexed")

	ids, err = idx.Search("fresh", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestIndexLimit(t *testing.T) {
	idx := newTestIndex(t)

	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, idx.Add(chat.Session{ID: id, Title: "shared keyword"}))
	}

	ids, err := idx.Search("keyword", 2)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
