package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cdynak/qr-scanner-registry/authflow"
	"github.com/cdynak/qr-scanner-registry/internal/config"
	"github.com/cdynak/qr-scanner-registry/provider"
	"github.com/cdynak/qr-scanner-registry/scans"
	scanpg "github.com/cdynak/qr-scanner-registry/scans/postgresrepo"
	scanfake "github.com/cdynak/qr-scanner-registry/scans/repofake"
	"github.com/cdynak/qr-scanner-registry/server"
	"github.com/cdynak/qr-scanner-registry/users"
	userpg "github.com/cdynak/qr-scanner-registry/users/postgresrepo"
	userfake "github.com/cdynak/qr-scanner-registry/users/repofake"
	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	cfg := config.New()
	setupLogging(cfg)
	displayAppname(cfg.GetAppName())

	ctx := context.Background()

	google, err := provider.NewGoogle(ctx,
		cfg.GetGoogleClientID(),
		cfg.GetGoogleClientSecret(),
		cfg.GetGoogleRedirectURL())
	if err != nil {
		return fmt.Errorf("google provider: %w", err)
	}

	userRepo, scanRepo, err := buildStores(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.Deps{
		Users:    users.NewService(userRepo),
		Scans:    scanRepo,
		Provider: google,
		Flow:     buildFlowRepo(cfg),
		Logger:   log.Logger,
	})
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func buildStores(cfg config.Config) (users.Repo, scans.Repo, error) {
	dsn := cfg.GetDatabaseDSN()
	if dsn == "" {
		log.Warn().Msg("DATABASE_DSN not set; using in-memory stores")
		return userfake.NewFakeUserRepo(), scanfake.NewFakeScanRepo(), nil
	}

	db, err := userpg.Open(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	return userpg.New(db), scanpg.New(db), nil
}

func buildFlowRepo(cfg config.Config) authflow.Repo {
	addr := cfg.GetRedisAddr()
	if addr == "" {
		log.Warn().Msg("REDIS_ADDR not set; using in-memory auth flow store")
		return authflow.NewInMemoryRepo()
	}
	return authflow.NewRedisRepo(redis.NewClient(&redis.Options{Addr: addr}))
}

func setupLogging(cfg config.Config) {
	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
