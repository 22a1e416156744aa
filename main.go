package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cellar/config"
	"cellar/global"
	"cellar/initialize"

	"github.com/fsnotify/fsnotify"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the config file")
	flag.Parse()

	if _, err := os.Stat(*configPath); err != nil {
		global.Logger.Fatal().Str("path", *configPath).Msg("no config file found; run the setup wizard first: go run ./cmd/setup")
	}

	app, err := initialize.Build(*configPath)
	if err != nil {
		global.Logger.Fatal().Err(err).Msg("startup failed")
	}

	hasUsers, err := app.Users.HasUsers()
	if err != nil {
		global.Logger.Fatal().Err(err).Msg("startup failed")
	}
	if !hasUsers {
		global.Logger.Fatal().Msg("no accounts exist yet; run the setup wizard first: go run ./cmd/setup")
	}

	// Most settings need a restart; the watch only tells operators their
	// edit was seen.
	if err := config.Watch(*configPath, func(_ *config.Config, e fsnotify.Event) {
		global.Logger.Info().Str("file", e.Name).Msg("config file changed; restart to apply")
	}); err != nil {
		global.Logger.Warn().Err(err).Msg("config watch unavailable")
	}

	addr := net.JoinHostPort(app.Cfg.Server.Host, fmt.Sprintf("%d", app.Cfg.Server.Port))
	srv := &http.Server{Addr: addr, Handler: app.Router}

	go func() {
		global.Logger.Info().Str("addr", addr).Str("site", app.Cfg.SiteTitle).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			global.Logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		global.Logger.Error().Err(err).Msg("shutdown")
	}
	global.Logger.Info().Msg("stopped")
}
