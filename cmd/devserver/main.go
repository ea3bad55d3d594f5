package main

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/parlorchat/parlor/internal/chathub"
	"github.com/parlorchat/parlor/pkg/log"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("PARLOR_ADDR", ":8080"), "listen address")
	rooms := flag.String("rooms", envOr("PARLOR_ROOMS", "general,random"), "comma-separated room names")
	level := flag.String("log-level", envOr("PARLOR_LOG_LEVEL", "info"), "log level (debug|info|warn|error)")
	jsonOut := flag.Bool("log-json", false, "log JSON instead of console output")
	flag.Parse()

	log.Init(log.Config{Level: *level, JSONOutput: *jsonOut})
	logger := log.WithComponent("devserver")

	names := splitNames(*rooms)
	if len(names) == 0 {
		logger.Fatal().Msg("at least one room name is required")
	}

	hub := chathub.NewHub(names, log.WithComponent("chathub"))
	srv := chathub.NewServer(*addr, hub, logger)

	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitNames(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
