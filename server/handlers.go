package server

import (
	"fmt"
	"strconv"
	"time"

	"pulse-lab/auth"
	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const defaultLeaderboardSize = 10

var validate = validator.New()

func identity(c *fiber.Ctx) (domain.Identity, error) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, errors.ErrAuth
	}
	return id, nil
}

// bind parses and validates a JSON body.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

func uuidParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id", errors.ErrInvalidPayload)
	}
	return id, nil
}

func (s *Server) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	room, err := s.chat.CreateRoom(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toRoomResponse(room))
}

func (s *Server) listRooms(c *fiber.Ctx) error {
	rooms, err := s.chat.ListRooms(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(lo.Map(rooms, func(r domain.Room, _ int) RoomResponse { return toRoomResponse(r) }))
}

func (s *Server) getMessages(c *fiber.Ctx) error {
	var cursor *string
	if q := c.Query("cursor"); q != "" {
		cursor = &q
	}
	messages, next, err := s.chat.GetMessages(c.UserContext(), domain.RoomID(c.Params("id")), cursor)
	if err != nil {
		return err
	}
	return c.JSON(MessagePageResponse{Messages: toMessageResponses(messages), NextCursor: next})
}

func (s *Server) searchMessages(c *fiber.Ctx) error {
	messages, err := s.chat.SearchMessages(c.UserContext(), domain.RoomID(c.Params("id")), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(toMessageResponses(messages))
}

func (s *Server) startFocusSession(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req StartFocusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := s.activities.StartFocusSession(c.UserContext(), id.UserID, time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toFocusSessionResponse(session))
}

func (s *Server) completeFocusSession(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	sessionID, err := uuidParam(c)
	if err != nil {
		return err
	}
	session, err := s.activities.CompleteFocusSession(c.UserContext(), id.UserID, sessionID)
	if err != nil {
		return err
	}
	return c.JSON(toFocusSessionResponse(session))
}

func (s *Server) createTask(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := s.activities.CreateTask(c.UserContext(), id.UserID, req.Title)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(task))
}

func (s *Server) completeTask(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := uuidParam(c)
	if err != nil {
		return err
	}
	task, err := s.activities.CompleteTask(c.UserContext(), id.UserID, taskID)
	if err != nil {
		return err
	}
	return c.JSON(toTaskResponse(task))
}

func (s *Server) bookmarkArticle(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	if err := s.activities.BookmarkArticle(c.UserContext(), id.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) myReputation(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	record, err := s.activities.GetReputation(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(toReputationResponse(record))
}

func (s *Server) leaderboard(c *fiber.Ctx) error {
	limit := defaultLeaderboardSize
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: limit must be a positive integer", errors.ErrInvalidPayload)
		}
		limit = n
	}
	records, err := s.activities.Leaderboard(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(lo.Map(records, func(r domain.ReputationRecord, _ int) ReputationResponse {
		return toReputationResponse(r)
	}))
}
