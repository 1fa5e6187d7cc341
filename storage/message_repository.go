package storage

import (
	"context"
	"fmt"
	"log/slog"

	"pulse-lab/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) *MessageRepository {
	return &MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

func messageRoomPrefix(room domain.RoomID) string {
	return fmt.Sprintf("%s%s:", messagePrefix, room)
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep two messages of the same nanosecond apart thanks to the UUID suffix.
func (m *MessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := fmt.Sprintf("%s%019d:%s",
		messageRoomPrefix(message.RoomID),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	err := m.db.Update(func(txn *badger.Txn) error {
		return setValue(txn, []byte(key), fromMessage(message))
	})
	return mapError(err)
}

// GetMessages walks a room backwards from the cursor, newest first.
// The returned cursor is the key suffix of the last message read, nil once
// the history is exhausted.
func (m *MessageRepository) GetMessages(ctx context.Context, room domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	var messages []domain.Message
	var lastKey string
	more := false
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := messageRoomPrefix(room)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Start past the newest possible timestamp and walk back
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				more = true
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			err := item.Value(func(value []byte) error {
				s, err := unmarshal(value)
				if err != nil {
					return err
				}
				message, err := toMessage(s)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, mapError(err)
	}
	if !more || lastKey == "" {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

func fromMessage(m domain.Message) map[string]any {
	return map[string]any{
		"id":                m.ID.String(),
		"room_id":           string(m.RoomID),
		"sender_id":         string(m.SenderID),
		"content":           m.Content,
		"lang":              m.Lang,
		"created_at":        formatTime(m.CreatedAt),
		"edited_at":         formatOptionalTime(m.EditedAt),
		"sender_name":       m.Sender.DisplayName,
		"sender_avatar_url": m.Sender.AvatarURL,
	}
}

func toMessage(s *structpb.Struct) (domain.Message, error) {
	id, err := uuid.Parse(str(s, "id"))
	if err != nil {
		return domain.Message{}, err
	}
	createdAt, err := parseTime(s, "created_at")
	if err != nil {
		return domain.Message{}, err
	}
	editedAt, err := optionalTime(s, "edited_at")
	if err != nil {
		return domain.Message{}, err
	}
	sender := domain.UserID(str(s, "sender_id"))
	return domain.Message{
		ID:        id,
		RoomID:    domain.RoomID(str(s, "room_id")),
		SenderID:  sender,
		Content:   str(s, "content"),
		Lang:      str(s, "lang"),
		CreatedAt: createdAt,
		EditedAt:  editedAt,
		Sender: domain.Profile{
			UserID:      sender,
			DisplayName: str(s, "sender_name"),
			AvatarURL:   str(s, "sender_avatar_url"),
		},
	}, nil
}
