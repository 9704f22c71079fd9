package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-formchat/internal/config"
	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/internal/mockapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	addr := flag.String("addr", cfg.MockAddr, "listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (:memory: for a throwaway store)")
	basePath := flag.String("base-path", mockapi.DefaultBasePath, "path prefix of the API")
	level := flag.String("log-level", cfg.LogLevel, "log level")
	pretty := flag.Bool("log-pretty", cfg.LogPretty, "human readable logs")
	flag.Parse()

	zlog := logger.InitGlobal(logger.Config{
		Level:   *level,
		Pretty:  *pretty,
		Output:  os.Stderr,
		Service: "formchat-mockapi",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := mockapi.OpenStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	srv, err := mockapi.New(ctx, store,
		mockapi.WithLogger(zlog),
		mockapi.WithBasePath(*basePath),
	)
	if err != nil {
		log.Fatalf("Failed to build mock server: %v", err)
	}
	if err := srv.Run(ctx, *addr); err != nil {
		log.Fatalf("Failed to serve: %v", err)
	}
}
