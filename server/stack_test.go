package server_test

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"pulse-lab/auth"
	"pulse-lab/domain"
	"pulse-lab/domain/event"
	"pulse-lab/protocol"
	"pulse-lab/reputation"
	"pulse-lab/runtime"
	"pulse-lab/runtime/workers"
	"pulse-lab/server"
	"pulse-lab/services"
	"pulse-lab/storage"

	"github.com/blugelabs/bluge"
	"github.com/gofiber/fiber/v2"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// stack is the whole process wired on an in-memory badger and a temporary index.
type stack struct {
	app         *fiber.App
	tokens      *auth.TokenManager
	rooms       *storage.RoomRepository
	profiles    *storage.ProfileRepository
	reputations *storage.ReputationRepository
	registry    *runtime.Registry
}

func newStack(t *testing.T) *stack {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)

	rooms := storage.NewRoomRepository(db, log)
	profiles := storage.NewProfileRepository(db)
	messages := storage.NewMessageRepository(db, log, nil)
	index := storage.NewMessageIndex(writer, log)
	reputations := storage.NewReputationRepository(db)
	activities := storage.NewActivityRepository(db)
	gateway := storage.NewMessageGateway(log, messages, profiles, index)
	engine := reputation.NewEngine(log, reputations)

	telemetryChan := make(chan event.Event, 64)
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	registry := runtime.NewRegistry(log, tokens, 64, 100*time.Millisecond, telemetryChan)
	broadcaster := runtime.NewBroadcaster(log, runtime.NewRoomTable(), registry)
	supervisor := workers.NewSupervisor(log, telemetryChan, 10*time.Millisecond)
	orchestrator := runtime.NewOrchestrator(log, supervisor, engine, registry, 2, 64, telemetryChan, nil, time.Second)
	router := runtime.NewRouter(log, registry, broadcaster, rooms, gateway, orchestrator)

	srv := server.NewServer(log, router, protocol.NewCodec(500), tokens,
		services.NewActivityService(log, activities, reputations, engine),
		services.NewChatService(log, rooms, messages, index, 20),
		registry)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		orchestrator.Start(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = writer.Close()
		_ = db.Close()
	})

	return &stack{
		app:         srv.App(),
		tokens:      tokens,
		rooms:       rooms,
		profiles:    profiles,
		reputations: reputations,
		registry:    registry,
	}
}

func (s *stack) token(t *testing.T, user, name string) string {
	t.Helper()
	token, err := s.tokens.GenerateToken(domain.Identity{UserID: domain.UserID(user), DisplayName: name})
	require.NoError(t, err)
	return token
}

// listen serves the app on a random local port and returns its address.
func (s *stack) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = s.app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = s.app.Shutdown()
	})
	return ln.Addr().String()
}
