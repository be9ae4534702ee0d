package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ruralcyberguard/internal/app"
	"ruralcyberguard/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	defer a.Close()

	router := server.NewRouter(server.Routes{
		Chat:    a.ChatHandler().Handle,
		Contact: a.ContactHandler().Handle,
		Health:  a.HealthHandler(),
	}, a.Logger)

	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	a.Logger.Info("dev server listening", "addr", srv.Addr, "wiring", a.String())
	if err := run(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
