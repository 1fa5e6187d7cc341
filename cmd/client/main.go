package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pulse-lab/domain"
	"pulse-lab/protocol"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"PULSE_SERVER_ADDR,default=localhost:8080"`
	Token         string `env:"PULSE_TOKEN,required=true"`
	RoomID        string `env:"PULSE_ROOM_ID,required=true"`
	LogLevel      string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run joins one room, prints every fact it receives and sends each stdin line as a message.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	room := domain.RoomID(config.RoomID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u := url.URL{Scheme: "ws", Host: config.ServerAddress, Path: "/ws", RawQuery: "token=" + url.QueryEscape(config.Token)}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	if err := send(conn, domain.JoinRoomCommand{Room: room}); err != nil {
		return exitRuntime, err
	}
	log.Info("Connected, type a line to send it (Ctrl+C to quit)", "server", config.ServerAddress, "room", room)

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			render(data)
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			return exitOK, nil
		case err := <-readErr:
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if err := send(conn, domain.SendMessageCommand{Room: room, Content: line}); err != nil {
				return exitRuntime, err
			}
		}
	}
}

func send(conn *websocket.Conn, cmd domain.Command) error {
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", cmd.Kind(), err)
	}
	return nil
}

func render(data []byte) {
	var envelope protocol.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		color.Red.Printf("unreadable frame: %s\n", data)
		return
	}
	switch domain.FactKind(envelope.Type) {
	case domain.NewMessageKind:
		var p domain.NewMessagePayload
		if json.Unmarshal(envelope.Payload, &p) == nil {
			fmt.Printf("%s %s: %s\n",
				color.Gray.Sprint(p.CreatedAt.Local().Format(time.TimeOnly)),
				color.Cyan.Sprint(p.Sender.DisplayName),
				p.Content)
		}
	case domain.UserJoinedKind, domain.UserLeftKind:
		var p domain.PresencePayload
		if json.Unmarshal(envelope.Payload, &p) == nil {
			color.Green.Printf("* %s %s\n", p.DisplayName, strings.TrimPrefix(envelope.Type, "user_"))
		}
	case domain.RoomStatsKind:
		var p domain.RoomStatsPayload
		if json.Unmarshal(envelope.Payload, &p) == nil {
			color.Gray.Printf("* %d online\n", p.OnlineCount)
		}
	case domain.ErrorKind:
		var p domain.ErrorPayload
		if json.Unmarshal(envelope.Payload, &p) == nil {
			color.Red.Printf("! %s\n", p.Message)
		}
	default:
		color.Yellow.Printf("%s %s\n", envelope.Type, envelope.Payload)
	}
}
