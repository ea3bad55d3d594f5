package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/parlorchat/parlor/internal/client"
	"github.com/parlorchat/parlor/internal/identity"
	"github.com/parlorchat/parlor/internal/transport/ws"
	"github.com/parlorchat/parlor/pkg/log"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", os.Getenv("PARLOR_SERVER"), "websocket endpoint override (e.g. ws://localhost:8080/)")
	host := flag.String("host", envOr("PARLOR_HOST", "localhost:8080"), "server host used when no endpoint override is set")
	dataDir := flag.String("data-dir", envOr("PARLOR_DATA_DIR", "."), "directory for the identity database")
	level := flag.String("log-level", envOr("PARLOR_LOG_LEVEL", "info"), "log level (debug|info|warn|error)")
	flag.Parse()

	log.Init(log.Config{Level: *level})
	logger := log.WithComponent("client")

	store, err := identity.NewBoltStore(*dataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open identity database")
	}
	defer store.Close()

	endpoint := client.ResolveEndpoint(*server, *host)

	snapshots := make(chan client.Snapshot, 16)
	c := client.New(client.Config{
		Dial: func(ctx context.Context) (client.Conn, error) {
			return ws.Dial(ctx, endpoint)
		},
		Identity: identity.NewResolver(store),
		OnState: func(snap client.Snapshot) {
			select {
			case snapshots <- snap:
			default:
			}
		},
		Logger: log.WithComponent("sync"),
	})

	if err := c.Connect(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect")
	}
	defer c.Close()

	logger.Info().Str("endpoint", endpoint).Msg("connected")

	go func() {
		for snap := range snapshots {
			render(snap)
		}
	}()

	fmt.Println("Type messages to send, /room <id> to switch rooms, /quit to exit:")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			break
		}
		if roomID, ok := strings.CutPrefix(text, "/room "); ok {
			c.SelectRoom(strings.TrimSpace(roomID))
			continue
		}
		c.Send(text)
	}
	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("error reading input")
	}

	logger.Info().Msg("disconnected")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func render(snap client.Snapshot) {
	if !snap.Ready {
		return
	}

	fmt.Println("--- rooms (most recent first) ---")
	for _, room := range snap.Rooms {
		marker := " "
		if room.ID == snap.ActiveRoomID {
			marker = "*"
		}
		fmt.Printf("%s %s (%s)\n", marker, room.Name, room.ID)
	}

	for _, room := range snap.Rooms {
		if room.ID != snap.ActiveRoomID {
			continue
		}
		// Print oldest first for reading order.
		for i := len(room.Messages) - 1; i >= 0; i-- {
			m := room.Messages[i]
			fmt.Printf("[%s]: %s\n", m.User.Username, m.Content)
		}
	}
}
