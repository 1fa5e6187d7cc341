package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) *RoomRepository {
	return &RoomRepository{db: db, log: log}
}

func (r *RoomRepository) CreateRoom(ctx context.Context, name string) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}
	room := domain.Room{
		ID:        domain.RoomID(uuid.NewString()),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		return setValue(txn, roomKey(string(room.ID)), map[string]any{
			"id":         string(room.ID),
			"name":       room.Name,
			"created_at": formatTime(room.CreatedAt),
		})
	})
	if err != nil {
		return domain.Room{}, mapError(err)
	}
	r.log.Debug("Room stored", "room_id", room.ID)
	return room, nil
}

func (r *RoomRepository) GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		s, err := getValue(txn, roomKey(string(id)))
		if err != nil {
			return err
		}
		room, err = toRoom(s)
		return err
	})
	return room, mapError(err)
}

func (r *RoomRepository) ListRooms(ctx context.Context) ([]domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(roomPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				s, err := unmarshal(val)
				if err != nil {
					return err
				}
				room, err := toRoom(s)
				if err != nil {
					return err
				}
				rooms = append(rooms, room)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rooms, mapError(err)
}

// EnsureMembership creates the durable membership on first join and returns it.
// Rooms are open: any authenticated user may join an existing room.
func (r *RoomRepository) EnsureMembership(ctx context.Context, room domain.RoomID,
	user domain.UserID, at time.Time) (domain.Membership, error) {
	if err := ctx.Err(); err != nil {
		return domain.Membership{}, err
	}
	var membership domain.Membership
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(roomKey(string(room))); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", errors.ErrRoomNotFound, room)
			}
			return err
		}

		key := memberKey(string(room), string(user))
		s, err := getValue(txn, key)
		switch {
		case err == nil:
			membership, err = toMembership(s)
			return err
		case errors.Is(err, badger.ErrKeyNotFound):
			membership = domain.Membership{RoomID: room, UserID: user, JoinedAt: at.UTC()}
			r.log.Debug("Membership created", "room_id", room, "user_id", user)
			return setValue(txn, key, fromMembership(membership))
		default:
			return err
		}
	})
	if errors.Is(err, errors.ErrRoomNotFound) {
		return domain.Membership{}, err
	}
	return membership, mapError(err)
}

// MarkRead sets the last-read timestamp of an existing membership. Idempotent.
func (r *RoomRepository) MarkRead(ctx context.Context, room domain.RoomID, user domain.UserID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		key := memberKey(string(room), string(user))
		s, err := getValue(txn, key)
		if err != nil {
			return err
		}
		membership, err := toMembership(s)
		if err != nil {
			return err
		}
		readAt := at.UTC()
		membership.LastReadAt = &readAt
		return setValue(txn, key, fromMembership(membership))
	})
	return mapError(err)
}

func (r *RoomRepository) GetMembership(ctx context.Context, room domain.RoomID, user domain.UserID) (domain.Membership, error) {
	if err := ctx.Err(); err != nil {
		return domain.Membership{}, err
	}
	var membership domain.Membership
	err := r.db.View(func(txn *badger.Txn) error {
		s, err := getValue(txn, memberKey(string(room), string(user)))
		if err != nil {
			return err
		}
		membership, err = toMembership(s)
		return err
	})
	return membership, mapError(err)
}

func toRoom(s *structpb.Struct) (domain.Room, error) {
	createdAt, err := parseTime(s, "created_at")
	if err != nil {
		return domain.Room{}, err
	}
	return domain.Room{
		ID:        domain.RoomID(str(s, "id")),
		Name:      str(s, "name"),
		CreatedAt: createdAt,
	}, nil
}

func fromMembership(m domain.Membership) map[string]any {
	return map[string]any{
		"room_id":      string(m.RoomID),
		"user_id":      string(m.UserID),
		"joined_at":    formatTime(m.JoinedAt),
		"last_read_at": formatOptionalTime(m.LastReadAt),
	}
}

func toMembership(s *structpb.Struct) (domain.Membership, error) {
	joinedAt, err := parseTime(s, "joined_at")
	if err != nil {
		return domain.Membership{}, err
	}
	lastReadAt, err := optionalTime(s, "last_read_at")
	if err != nil {
		return domain.Membership{}, err
	}
	return domain.Membership{
		RoomID:     domain.RoomID(str(s, "room_id")),
		UserID:     domain.UserID(str(s, "user_id")),
		JoinedAt:   joinedAt,
		LastReadAt: lastReadAt,
	}, nil
}
