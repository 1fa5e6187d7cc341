package storage

import (
	"context"
	"log/slog"
	"time"

	"pulse-lab/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const (
	idField         = "_id"
	roomField       = "room"
	senderField     = "sender"
	senderNameField = "sender_name"
	contentField    = "content"
	createdAtField  = "created_at"
)

// MessageIndex keeps a full-text index of chat messages next to badger.
// Badger stays the source of truth, the index can be rebuilt from it.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

func (i *MessageIndex) Index(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField(roomField, string(message.RoomID)).StoreValue()).
		AddField(bluge.NewKeywordField(senderField, string(message.SenderID)).StoreValue()).
		AddField(bluge.NewStoredOnlyField(senderNameField, []byte(message.Sender.DisplayName))).
		AddField(bluge.NewTextField(contentField, message.Content).StoreValue()).
		AddField(bluge.NewDateTimeField(createdAtField, message.CreatedAt).StoreValue())
	return mapError(i.writer.Update(doc.ID(), doc))
}

// Search returns the best matches for query within one room, most relevant first.
func (i *MessageIndex) Search(ctx context.Context, room domain.RoomID, query string, limit int) ([]domain.Message, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, mapError(err)
	}
	defer func() {
		_ = reader.Close()
	}()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(string(room)).SetField(roomField)).
		AddMust(bluge.NewMatchQuery(query).SetField(contentField))
	request := bluge.NewTopNSearch(limit, q)

	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, mapError(err)
	}

	var messages []domain.Message
	match, err := matches.Next()
	for err == nil && match != nil {
		message := domain.Message{RoomID: room}
		var visitErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case idField:
				message.ID, visitErr = uuid.ParseBytes(value)
			case senderField:
				message.SenderID = domain.UserID(value)
				message.Sender.UserID = domain.UserID(value)
			case senderNameField:
				message.Sender.DisplayName = string(value)
			case contentField:
				message.Content = string(value)
			case createdAtField:
				var at time.Time
				at, visitErr = bluge.DecodeDateTime(value)
				message.CreatedAt = at.UTC()
			}
			return visitErr == nil
		})
		if err != nil {
			return nil, mapError(err)
		}
		if visitErr != nil {
			i.log.Warn("Skipping unreadable search hit", "error", visitErr)
		} else {
			messages = append(messages, message)
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, mapError(err)
	}
	return messages, nil
}
