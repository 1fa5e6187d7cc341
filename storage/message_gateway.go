package storage

import (
	"context"
	"fmt"
	"log/slog"

	"pulse-lab/contract"
	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

// MessageGateway is the single write path for chat messages.
// The message is durable when Persist returns, indexing is best-effort.
type MessageGateway struct {
	log      *slog.Logger
	messages contract.IMessageRepository
	profiles contract.IProfileRepository
	index    contract.IMessageIndex
}

func NewMessageGateway(log *slog.Logger, messages contract.IMessageRepository,
	profiles contract.IProfileRepository, index contract.IMessageIndex) *MessageGateway {
	return &MessageGateway{log: log, messages: messages, profiles: profiles, index: index}
}

func (g *MessageGateway) Persist(ctx context.Context, newMessage domain.NewMessage) (domain.Message, error) {
	message := domain.Message{
		ID:        uuid.New(),
		RoomID:    newMessage.RoomID,
		SenderID:  newMessage.Sender.UserID,
		Content:   newMessage.Content,
		Lang:      detectLang(newMessage.Content),
		CreatedAt: newMessage.CreatedAt.UTC(),
		Sender:    g.resolveSender(ctx, newMessage.Sender),
	}

	if err := g.messages.StoreMessage(ctx, message); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	if g.index != nil {
		if err := g.index.Index(ctx, message); err != nil {
			g.log.Warn("Message stored but not indexed", "message_id", message.ID, "error", err)
		}
	}
	return message, nil
}

// resolveSender prefers the stored profile and falls back to the handshake identity.
func (g *MessageGateway) resolveSender(ctx context.Context, identity domain.Identity) domain.Profile {
	fallback := domain.Profile{UserID: identity.UserID, DisplayName: identity.DisplayName}
	profile, err := g.profiles.GetProfile(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			g.log.Warn("Profile lookup failed, using handshake identity", "user_id", identity.UserID, "error", err)
		}
		return fallback
	}
	if profile.DisplayName == "" {
		profile.DisplayName = identity.DisplayName
	}
	return profile
}

func detectLang(content string) string {
	info := whatlanggo.Detect(content)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
