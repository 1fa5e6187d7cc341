package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"pulse-lab/auth"
	"pulse-lab/domain"
	"pulse-lab/protocol"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config Config
	tokens *auth.TokenManager
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR is not set")
	}
	s.tokens = auth.NewTokenManager(s.Config.JWTSecret, time.Hour)
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header so scenario steps stand out in the logs.
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

func (s *BaseSuite) Token(user, name string) string {
	token, err := s.tokens.GenerateToken(domain.Identity{UserID: domain.UserID(user), DisplayName: name})
	s.Require().NoError(err)
	return token
}

// Dial opens an authenticated websocket and closes it at the end of the test.
func (s *BaseSuite) Dial(token string) *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: s.Config.ServerAddr, Path: "/ws", RawQuery: "token=" + url.QueryEscape(token)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	s.Require().NoError(err, "Failed to connect to "+u.String())
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *BaseSuite) Send(conn *websocket.Conn, cmd domain.Command) {
	data, err := protocol.EncodeCommand(cmd)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, data))
}

// Expect reads frames until one of the given kind arrives.
func (s *BaseSuite) Expect(conn *websocket.Conn, kind domain.FactKind) protocol.Envelope {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		s.Require().NoError(err, "waiting for %s", kind)
		if s.Config.DebugJSON {
			s.T().Logf("FRAME: %s", data)
		}
		var envelope protocol.Envelope
		s.Require().NoError(json.Unmarshal(data, &envelope))
		if envelope.Type == string(kind) {
			return envelope
		}
	}
}

// Call performs an authenticated REST call and decodes the JSON answer into out.
func (s *BaseSuite) Call(method, path, token string, body, out any) int {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	request, err := http.NewRequest(method, "http://"+s.Config.ServerAddr+path, reader)
	s.Require().NoError(err)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	response, err := s.client.Do(request)
	s.Require().NoError(err)
	defer response.Body.Close()
	s.T().Logf("HTTP %s %s [%d] in %v", method, path, response.StatusCode, time.Since(start))

	if out != nil && response.StatusCode < 300 {
		s.Require().NoError(json.NewDecoder(response.Body).Decode(out))
	}
	return response.StatusCode
}
