package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pulse-lab/contract"
	"pulse-lab/domain"
	"pulse-lab/errors"
)

// Router turns decoded commands of one connection into membership changes,
// persisted messages and facts. Errors stay local to the originating connection.
type Router struct {
	log         *slog.Logger
	registry    *Registry
	broadcaster *Broadcaster
	rooms       contract.IRoomStore
	gateway     contract.IMessageGateway
	dispatcher  contract.IReputationDispatcher
	clock       func() time.Time
}

func NewRouter(log *slog.Logger, registry *Registry, broadcaster *Broadcaster,
	rooms contract.IRoomStore, gateway contract.IMessageGateway,
	dispatcher contract.IReputationDispatcher) *Router {
	return &Router{
		log:         log,
		registry:    registry,
		broadcaster: broadcaster,
		rooms:       rooms,
		gateway:     gateway,
		dispatcher:  dispatcher,
		clock:       time.Now,
	}
}

// Connect authenticates and registers a new transport handle.
func (r *Router) Connect(raw contract.RawConn, token string) (*Connection, error) {
	conn, err := r.registry.Register(raw, token)
	if err != nil {
		r.log.Info("Handshake rejected", "error", err)
		return nil, err
	}
	r.log.Info("Connection opened", "conn_id", conn.ID, "user_id", conn.Identity.UserID)
	return conn, nil
}

// Handle is called by the single reader of a connection, commands of one
// connection are therefore handled in arrival order.
func (r *Router) Handle(ctx context.Context, conn *Connection, cmd domain.Command) error {
	switch c := cmd.(type) {
	case domain.JoinRoomCommand:
		return r.join(ctx, conn, c.Room)
	case domain.LeaveRoomCommand:
		r.broadcaster.Left(ctx, conn, c.Room)
		return nil
	case domain.SendMessageCommand:
		return r.send(ctx, conn, c)
	case domain.TypingStartCommand:
		r.relayTyping(ctx, conn, c.Room, domain.UserTyping(c.Room, conn.Identity.UserID))
		return nil
	case domain.TypingStopCommand:
		r.relayTyping(ctx, conn, c.Room, domain.UserStoppedTyping(c.Room, conn.Identity.UserID))
		return nil
	case domain.MarkReadCommand:
		r.markRead(ctx, conn.Identity.UserID, c.Room)
		return nil
	case domain.FocusStartedCommand:
		r.broadcaster.NotifyAll(ctx, domain.UserFocusing(conn.Identity.UserID, c.Duration))
		return nil
	case domain.FocusCompletedCommand:
		r.broadcaster.NotifyAll(ctx, domain.UserCompletedFocus(conn.Identity.UserID))
		return nil
	default:
		return fmt.Errorf("%w: %T", errors.ErrUnknownEvent, cmd)
	}
}

func (r *Router) join(ctx context.Context, conn *Connection, room domain.RoomID) error {
	if conn.InRoom(room) {
		return nil
	}
	if _, err := r.rooms.EnsureMembership(ctx, room, conn.Identity.UserID, r.clock().UTC()); err != nil {
		return err
	}
	r.broadcaster.Joined(ctx, conn, room)
	return nil
}

func (r *Router) send(ctx context.Context, conn *Connection, cmd domain.SendMessageCommand) error {
	user := conn.Identity.UserID
	if !r.broadcaster.IsLive(cmd.Room, user) {
		return fmt.Errorf("%w: %s", errors.ErrNotAMember, cmd.Room)
	}

	message, err := r.gateway.Persist(ctx, domain.NewMessage{
		RoomID:    cmd.Room,
		Sender:    conn.Identity,
		Content:   cmd.Content,
		CreatedAt: r.clock().UTC(),
	})
	if err != nil {
		if !errors.Is(err, errors.ErrPersistence) {
			err = fmt.Errorf("%w: %w", errors.ErrPersistence, err)
		}
		return err
	}

	r.broadcaster.NotifyMembers(ctx, cmd.Room, domain.NewMessagePosted(message), "")
	r.dispatcher.Dispatch(domain.ReputationJob{UserID: user, Action: domain.ChatMessageAction})
	return nil
}

func (r *Router) relayTyping(ctx context.Context, conn *Connection, room domain.RoomID, fact domain.Fact) {
	user := conn.Identity.UserID
	if !r.broadcaster.IsLive(room, user) {
		return
	}
	r.broadcaster.NotifyMembers(ctx, room, fact, user)
}

func (r *Router) markRead(ctx context.Context, user domain.UserID, room domain.RoomID) {
	if err := r.rooms.MarkRead(ctx, room, user, r.clock().UTC()); err != nil {
		r.log.Warn("Last-read update failed", "room_id", room, "user_id", user, "error", err)
	}
}

// Disconnect unregisters the connection and leaves every room it had joined.
// The in-memory state is always updated, durable last-read updates are best effort.
func (r *Router) Disconnect(ctx context.Context, conn *Connection) {
	rooms := r.registry.Unregister(conn.ID)
	for _, room := range rooms {
		r.broadcaster.Left(ctx, conn, room)
	}
	detached := context.WithoutCancel(ctx)
	for _, room := range rooms {
		r.markRead(detached, conn.Identity.UserID, room)
	}
	r.log.Info("Connection closed", "conn_id", conn.ID, "user_id", conn.Identity.UserID, "rooms", len(rooms))
}

// Reject reports a command failure to the originating connection only.
func (r *Router) Reject(ctx context.Context, conn *Connection, err error) {
	r.log.Debug("Command rejected", "conn_id", conn.ID, "error", err)
	if sendErr := conn.Send(ctx, domain.ErrorFact(publicError(err))); sendErr != nil && !errors.Is(sendErr, errors.ErrConnectionClosed) {
		r.log.Debug("Error fact not delivered", "conn_id", conn.ID, "error", sendErr)
	}
}

var publicErrors = []error{
	errors.ErrRoomNotFound,
	errors.ErrNotAMember,
	errors.ErrPersistence,
}

// publicError hides store details behind the matching sentinel.
func publicError(err error) error {
	if errors.Is(err, errors.ErrInvalidPayload) || errors.Is(err, errors.ErrUnknownEvent) {
		return err
	}
	for _, sentinel := range publicErrors {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return fmt.Errorf("internal error")
}
