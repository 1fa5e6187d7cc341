// Package server exposes the HTTP API and the websocket endpoint.
package server

import (
	"log/slog"

	"pulse-lab/auth"
	"pulse-lab/contract"
	"pulse-lab/errors"
	"pulse-lab/protocol"
	"pulse-lab/runtime"
	"pulse-lab/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const tokenKey = "ws_token"

type ConnectionCounter interface {
	Count() int
}

type Server struct {
	log        *slog.Logger
	router     *runtime.Router
	codec      *protocol.Codec
	verifier   contract.ITokenVerifier
	activities services.IActivityService
	chat       services.IChatService
	counter    ConnectionCounter
}

func NewServer(log *slog.Logger, router *runtime.Router, codec *protocol.Codec,
	verifier contract.ITokenVerifier, activities services.IActivityService,
	chat services.IChatService, counter ConnectionCounter) *Server {
	return &Server{
		log:        log,
		router:     router,
		codec:      codec,
		verifier:   verifier,
		activities: activities,
		chat:       chat,
		counter:    counter,
	}
}

// App builds the fiber application with every route mounted.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "pulse-lab",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Get("/health", s.health)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals(tokenKey, auth.TokenFromRequest(c))
		return c.Next()
	})
	app.Get("/ws", websocket.New(s.handleSocket))

	api := app.Group("/api/v1", auth.RequireBearer(s.verifier))
	api.Post("/rooms", s.createRoom)
	api.Get("/rooms", s.listRooms)
	api.Get("/rooms/:id/messages", s.getMessages)
	api.Get("/rooms/:id/search", s.searchMessages)
	api.Post("/focus-sessions", s.startFocusSession)
	api.Post("/focus-sessions/:id/complete", s.completeFocusSession)
	api.Post("/tasks", s.createTask)
	api.Post("/tasks/:id/complete", s.completeTask)
	api.Post("/articles/:id/bookmark", s.bookmarkArticle)
	api.Get("/reputation/me", s.myReputation)
	api.Get("/reputation/leaderboard", s.leaderboard)

	return app
}

// errorHandler maps the error taxonomy onto status codes.
// Unexpected failures are logged and never leak their message.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	}
	status := errors.ToHTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		s.log.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(status).JSON(ErrorResponse{Error: "internal error"})
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok", Connections: s.counter.Count()})
}
