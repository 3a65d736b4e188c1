package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"link-cable/internal/api/ws"
	"link-cable/internal/app"
	"link-cable/internal/config"
	"link-cable/internal/room"
	"link-cable/internal/store"

	httpapi "link-cable/internal/api/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// @title link-cable room API
// @version 1.0
// @description Room listing and announcements for the link-cable socket server
// @BasePath /
func main() {
	// Local .env is optional
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := app.NewLogger(cfg.Env)
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	rm := room.NewManager(mem, cfg, logger)
	hub := ws.NewHub(rm, cfg.Session, logger)

	api := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.WithCORS(httpapi.NewRouter(rm, hub, logger), cfg.CORSAllow),
		ReadHeaderTimeout: 10 * time.Second,
	}
	sock := &http.Server{
		Addr:              cfg.WSAddr,
		Handler:           httpapi.NewSocketRouter(hub, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, srv := range map[string]*http.Server{"api": api, "socket": sock} {
		name, srv := name, srv
		g.Go(func() error {
			logger.Info("server.listening", "server", name, "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server.shutdown.start")

		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(api.Shutdown(shutdownCtx), sock.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		logger.Error("server.crash", "err", err)
		log.Fatal(err)
	}
	logger.Info("server.shutdown.complete")
}
