package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pulse-lab/contract"
	"pulse-lab/domain"
	"pulse-lab/errors"
)

type IChatService interface {
	CreateRoom(ctx context.Context, name string) (domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	GetMessages(ctx context.Context, room domain.RoomID, cursor *string) ([]domain.Message, *string, error)
	SearchMessages(ctx context.Context, room domain.RoomID, query string) ([]domain.Message, error)
}

// ChatService serves room history and search over HTTP.
// Live traffic goes through runtime.Router, never through here.
type ChatService struct {
	log         *slog.Logger
	rooms       contract.IRoomStore
	messages    contract.IMessageRepository
	index       contract.IMessageIndex
	searchLimit int
}

func NewChatService(log *slog.Logger, rooms contract.IRoomStore, messages contract.IMessageRepository,
	index contract.IMessageIndex, searchLimit int) *ChatService {
	return &ChatService{log: log, rooms: rooms, messages: messages, index: index, searchLimit: searchLimit}
}

func (s *ChatService) CreateRoom(ctx context.Context, name string) (domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Room{}, fmt.Errorf("%w: missing room name", errors.ErrInvalidPayload)
	}
	room, err := s.rooms.CreateRoom(ctx, name)
	if err != nil {
		return domain.Room{}, err
	}
	s.log.Info("Room created", "room_id", room.ID, "name", room.Name)
	return room, nil
}

func (s *ChatService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.ListRooms(ctx)
}

func (s *ChatService) GetMessages(ctx context.Context, room domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	if _, err := s.rooms.GetRoom(ctx, room); err != nil {
		return nil, nil, err
	}
	return s.messages.GetMessages(ctx, room, cursor)
}

func (s *ChatService) SearchMessages(ctx context.Context, room domain.RoomID, query string) ([]domain.Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", errors.ErrInvalidPayload)
	}
	if _, err := s.rooms.GetRoom(ctx, room); err != nil {
		return nil, err
	}
	return s.index.Search(ctx, room, query, s.searchLimit)
}
