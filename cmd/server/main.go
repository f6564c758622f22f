package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peytondoyle/tabby/internal/auth"
	"github.com/peytondoyle/tabby/internal/engine"
	"github.com/peytondoyle/tabby/internal/server"
	"github.com/peytondoyle/tabby/internal/service"
	"github.com/peytondoyle/tabby/internal/storage/sqlite"
	"github.com/peytondoyle/tabby/pkg/logging"
)

func main() {
	var (
		addr   = flag.String("addr", getEnv("TABBY_ADDR", ":8080"), "listen address")
		dbPath = flag.String("db", getEnv("TABBY_DB", "data/tabby.db"), "path to the SQLite database")
	)
	flag.Parse()

	logging.Setup()

	secret := os.Getenv("TABBY_JWT_SECRET")
	if secret == "" {
		slog.Error("TABBY_JWT_SECRET is required")
		os.Exit(1)
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	jwtManager := auth.NewJWTManager(secret, 24*time.Hour)
	srv := server.New(
		service.NewSplitService(store, engine.Policy{}),
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager),
	)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(jwtManager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", *addr, "db", *dbPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
