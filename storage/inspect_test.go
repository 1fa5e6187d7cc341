package storage

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"pulse-lab/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewReputationRepository(db)
	now := time.Now()

	record := domain.NewReputationRecord("alice", now)
	record.Points = 120
	record.Badges = []domain.Badge{domain.EarlyAdopterBadge}
	req.NoError(repo.Save(ctx, record))
	room, err := NewRoomRepository(db, slog.Default()).CreateRoom(ctx, "general")
	req.NoError(err)

	described := map[string]string{}
	req.NoError(db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			kind, detail, err := Describe(string(it.Item().Key()), val)
			if err != nil {
				return err
			}
			described[kind] = detail
		}
		return nil
	}))

	req.Equal("120 pts, streak 0, badges [Early Adopter]", described["REPUTATION"])
	req.Contains(described["ROOM"], room.Name)

	kind, _, err := Describe("bogus", []byte{0xff, 0xff})
	req.Equal("RAW", kind)
	req.Error(err)
}
