package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pulse-lab/domain"
	"pulse-lab/server"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func (s *stack) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	response, err := s.app.Test(request, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response, data
}

func TestHealth(t *testing.T) {
	req := require.New(t)
	s := newStack(t)

	response, body := s.do(t, http.MethodGet, "/health", "", nil)

	req.Equal(http.StatusOK, response.StatusCode)
	var health server.HealthResponse
	req.NoError(json.Unmarshal(body, &health))
	req.Equal("ok", health.Status)
	req.Zero(health.Connections)
}

func TestAPI_Requires_Bearer_Token(t *testing.T) {
	req := require.New(t)
	s := newStack(t)

	response, _ := s.do(t, http.MethodGet, "/api/v1/reputation/me", "", nil)
	req.Equal(http.StatusUnauthorized, response.StatusCode)

	response, _ = s.do(t, http.MethodGet, "/api/v1/reputation/me", "not-a-jwt", nil)
	req.Equal(http.StatusUnauthorized, response.StatusCode)
}

func TestAPI_Focus_Session_Scores_Once(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	token := s.token(t, "alice", "Alice")

	// Given a started focus session
	response, body := s.do(t, http.MethodPost, "/api/v1/focus-sessions", token, server.StartFocusRequest{DurationMinutes: 25})
	req.Equal(http.StatusCreated, response.StatusCode)
	var session server.FocusSessionResponse
	req.NoError(json.Unmarshal(body, &session))
	req.Equal(25, session.DurationMinutes)
	req.Nil(session.CompletedAt)

	// When it is completed
	response, body = s.do(t, http.MethodPost, "/api/v1/focus-sessions/"+session.ID.String()+"/complete", token, nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.NoError(json.Unmarshal(body, &session))
	req.NotNil(session.CompletedAt)

	// Then completing it again is a conflict
	response, _ = s.do(t, http.MethodPost, "/api/v1/focus-sessions/"+session.ID.String()+"/complete", token, nil)
	req.Equal(http.StatusConflict, response.StatusCode)

	// And the reputation was updated synchronously, once
	response, body = s.do(t, http.MethodGet, "/api/v1/reputation/me", token, nil)
	req.Equal(http.StatusOK, response.StatusCode)
	var rep server.ReputationResponse
	req.NoError(json.Unmarshal(body, &rep))
	req.Equal(10, rep.Points)
	req.Equal(1, rep.FocusStreak)
	req.Equal(domain.Explorer, rep.Level)
	req.Empty(rep.Badges)
}

func TestAPI_Tasks_And_Bookmarks(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	alice := s.token(t, "alice", "Alice")
	bob := s.token(t, "bob", "Bob")

	response, body := s.do(t, http.MethodPost, "/api/v1/tasks", alice, server.CreateTaskRequest{Title: "ship it"})
	req.Equal(http.StatusCreated, response.StatusCode)
	var task server.TaskResponse
	req.NoError(json.Unmarshal(body, &task))

	// Bob cannot complete alice's task
	response, _ = s.do(t, http.MethodPost, "/api/v1/tasks/"+task.ID.String()+"/complete", bob, nil)
	req.Equal(http.StatusNotFound, response.StatusCode)

	response, _ = s.do(t, http.MethodPost, "/api/v1/tasks/"+task.ID.String()+"/complete", alice, nil)
	req.Equal(http.StatusOK, response.StatusCode)

	response, _ = s.do(t, http.MethodPost, "/api/v1/articles/go-memory-model/bookmark", alice, nil)
	req.Equal(http.StatusNoContent, response.StatusCode)

	record, err := s.reputations.FetchOrCreate(context.Background(), "alice", task.CreatedAt)
	req.NoError(err)
	req.Equal(5+2, record.Points)

	// Validation failures
	response, _ = s.do(t, http.MethodPost, "/api/v1/tasks", alice, server.CreateTaskRequest{})
	req.Equal(http.StatusBadRequest, response.StatusCode)
	response, _ = s.do(t, http.MethodPost, "/api/v1/tasks/not-a-uuid/complete", alice, nil)
	req.Equal(http.StatusBadRequest, response.StatusCode)
	response, _ = s.do(t, http.MethodPost, "/api/v1/tasks/"+uuid.NewString()+"/complete", alice, nil)
	req.Equal(http.StatusNotFound, response.StatusCode)
}

func TestAPI_Rooms_And_History(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	token := s.token(t, "alice", "Alice")

	response, body := s.do(t, http.MethodPost, "/api/v1/rooms", token, server.CreateRoomRequest{Name: "general"})
	req.Equal(http.StatusCreated, response.StatusCode)
	var room server.RoomResponse
	req.NoError(json.Unmarshal(body, &room))
	req.Equal("general", room.Name)

	response, body = s.do(t, http.MethodGet, "/api/v1/rooms/"+string(room.ID)+"/messages", token, nil)
	req.Equal(http.StatusOK, response.StatusCode)
	var page server.MessagePageResponse
	req.NoError(json.Unmarshal(body, &page))
	req.Empty(page.Messages)
	req.Nil(page.NextCursor)

	response, _ = s.do(t, http.MethodGet, "/api/v1/rooms/unknown/messages", token, nil)
	req.Equal(http.StatusNotFound, response.StatusCode)

	response, _ = s.do(t, http.MethodGet, "/api/v1/rooms/"+string(room.ID)+"/search", token, nil)
	req.Equal(http.StatusBadRequest, response.StatusCode)

	response, body = s.do(t, http.MethodGet, "/api/v1/rooms", token, nil)
	req.Equal(http.StatusOK, response.StatusCode)
	var rooms []server.RoomResponse
	req.NoError(json.Unmarshal(body, &rooms))
	req.Len(rooms, 1)
}

func TestAPI_Leaderboard(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	alice := s.token(t, "alice", "Alice")
	bob := s.token(t, "bob", "Bob")

	s.do(t, http.MethodPost, "/api/v1/articles/a/bookmark", alice, nil)
	s.do(t, http.MethodPost, "/api/v1/articles/a/bookmark", bob, nil)
	s.do(t, http.MethodPost, "/api/v1/articles/b/bookmark", bob, nil)

	response, body := s.do(t, http.MethodGet, "/api/v1/reputation/leaderboard?limit=1", alice, nil)
	req.Equal(http.StatusOK, response.StatusCode)
	var board []server.ReputationResponse
	req.NoError(json.Unmarshal(body, &board))
	req.Len(board, 1)
	req.Equal(domain.UserID("bob"), board[0].UserID)
	req.Equal(4, board[0].Points)

	response, _ = s.do(t, http.MethodGet, "/api/v1/reputation/leaderboard?limit=zero", alice, nil)
	req.Equal(http.StatusBadRequest, response.StatusCode)
}
