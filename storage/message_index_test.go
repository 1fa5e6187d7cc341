package storage

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *MessageIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = writer.Close()
	})
	return NewMessageIndex(writer, slog.Default())
}

func TestMessageIndex_Search_Scoped_To_Room(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	ctx := context.Background()
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	deploy := newMessage("r1", "alice", "the deployment pipeline is green", at)
	lunch := newMessage("r1", "bob", "who wants lunch", at.Add(time.Minute))
	otherRoom := newMessage("r2", "clara", "deployment postponed", at)
	req.NoError(index.Index(ctx, deploy))
	req.NoError(index.Index(ctx, lunch))
	req.NoError(index.Index(ctx, otherRoom))

	// When searching r1
	hits, err := index.Search(ctx, "r1", "deployment", 10)

	// Then only the matching r1 message comes back, fully hydrated
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(deploy.ID, hits[0].ID)
	req.Equal(deploy.Content, hits[0].Content)
	req.Equal(deploy.SenderID, hits[0].SenderID)
	req.Equal("alice", hits[0].Sender.DisplayName)
	req.True(at.Equal(hits[0].CreatedAt))
}

func TestMessageIndex_Reindex_Replaces_Document(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	ctx := context.Background()
	m := newMessage("r1", "alice", "draft text", time.Now())
	req.NoError(index.Index(ctx, m))

	m.Content = "final wording"
	req.NoError(index.Index(ctx, m))

	hits, err := index.Search(ctx, "r1", "draft", 10)
	req.NoError(err)
	req.Empty(hits)
	hits, err = index.Search(ctx, "r1", "wording", 10)
	req.NoError(err)
	req.Len(hits, 1)
}
