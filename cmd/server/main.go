package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpc2 "pulse-lab/grpc"
	"pulse-lab/auth"
	"pulse-lab/domain/event"
	"pulse-lab/internal"
	"pulse-lab/protocol"
	"pulse-lab/reputation"
	"pulse-lab/runtime"
	"pulse-lab/runtime/workers"
	"pulse-lab/server"
	"pulse-lab/services"
	"pulse-lab/storage"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes give a meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run owns every resource so that deferred cleanups execute before the exit code is returned.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage (BadgerDB + Bluge)
	db, err := storage.OpenBadger(ctx, config.BadgerFilepath, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, RecordMapper)
	}

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	rooms := storage.NewRoomRepository(db, logger)
	profiles := storage.NewProfileRepository(db)
	messages := storage.NewMessageRepository(db, logger, config.LimitMessages)
	index := storage.NewMessageIndex(blugeWriter, logger)
	reputations := storage.NewReputationRepository(db)
	activities := storage.NewActivityRepository(db)
	gateway := storage.NewMessageGateway(logger, messages, profiles, index)

	// 3. Supervision & Orchestration
	telemetryChan := make(chan event.Event, config.TelemetryBufferSize)
	counter := event.NewCounter()
	handlers := []event.Handler{
		event.NewChannelCapacityHandler(logger, config.LowCapacityThreshold),
		event.NewWorkerRestartedAfterPanicHandler(logger, counter),
		event.NewReputationHandler(logger, counter),
		event.NewFactDroppedHandler(logger, counter),
		event.NewProcessStatsHandler(logger),
	}

	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	engine := reputation.NewEngine(logger, reputations)
	registry := runtime.NewRegistry(logger, tokens, config.ConnectionBufferSize, config.DeliveryTimeout, telemetryChan)
	broadcaster := runtime.NewBroadcaster(logger, runtime.NewRoomTable(), registry)
	supervisor := workers.NewSupervisor(logger, telemetryChan, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(logger, supervisor, engine, registry,
		config.ReputationWorkers, config.ReputationBufferSize, telemetryChan, handlers, config.MetricInterval)
	router := runtime.NewRouter(logger, registry, broadcaster, rooms, gateway, orchestrator)

	errChan := make(chan error, 2)
	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		orchestrator.Start(ctx)
	}()

	// 4. HTTP + websocket
	srv := server.NewServer(logger, router, protocol.NewCodec(config.MaxContentLength), tokens,
		services.NewActivityService(logger, activities, reputations, engine),
		services.NewChatService(logger, rooms, messages, index, config.SearchLimit),
		registry)
	app := srv.App()
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 5. gRPC health
	healthAddress := fmt.Sprintf("%s:%d", config.Host, config.HealthPort)
	listener, err := net.Listen("tcp", healthAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", healthAddress, err)
	}
	health := grpc2.NewHealthServer(logger)
	go func() {
		if err := health.Serve(listener); err != nil {
			errChan <- fmt.Errorf("gRPC health server error: %w", err)
		}
	}()
	health.SetServing(true)

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		stop()
		return exitRuntime, err
	}

	// 7. Graceful shutdown: stop accepting, close sockets, then drain workers.
	logger.Info("Shutting down gracefully...")
	health.Stop()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	orchestrator.Stop()
	<-orchestratorDone
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

// RecordMapper decodes stored values for the debug inspector.
func RecordMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	kind, detail, err := storage.Describe(key, val)
	row.Type = kind
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Detail = detail
	return row
}
