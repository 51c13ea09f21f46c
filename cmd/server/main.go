package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tmathes/chatterbox/internal/api"
	"github.com/tmathes/chatterbox/internal/config"
	"github.com/tmathes/chatterbox/internal/server"
	"github.com/tmathes/chatterbox/internal/stats"
	"github.com/tmathes/chatterbox/internal/store"
)

const defaultSigningKey = "d2ViIGNoYXQgZ2F0ZXdheSBzaWduaW5nIGtleQ=="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dataDir        string
	signingKey     string
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dataDir, "data-dir", "data", "directory for the JSON store and uploads")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[chatterbox] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dataDir, signingKey, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}

	repo, err := store.NewFileChatRepository(cfg.DataDir)
	if err != nil {
		logger.Fatal("store:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	hub, err := server.NewChatHub(logger, repo, statsUpdater)
	if err != nil {
		logger.Fatal("new chat hub:", err)
	}

	app, err := api.NewApp(mux, logger, hub, repo, cfg)
	if err != nil {
		logger.Fatal("new app:", err)
	}

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go hub.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := app.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down chat hub...")
	if err := hub.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("chat hub shutdown:", err)
	}

	logger.Println("shutdown complete")
}
