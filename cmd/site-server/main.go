package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/codecraftlabs/site-server/internal/api"
	"github.com/codecraftlabs/site-server/internal/auth"
	"github.com/codecraftlabs/site-server/internal/config"
	"github.com/codecraftlabs/site-server/internal/repository"
	"github.com/codecraftlabs/site-server/internal/store"
	"github.com/codecraftlabs/site-server/pkg/db"
)

func main() {
	ctx := context.Background()

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	recordStore, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal("init store", zap.Error(err))
	}
	defer cleanup()

	authenticator, err := auth.New(
		cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("init auth", zap.Error(err))
	}

	handler := api.NewRouter(api.Deps{
		Store:      recordStore,
		Auth:       authenticator,
		Log:        logger,
		UploadsDir: cfg.Store.UploadsDir,
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting site-server",
		zap.String("addr", srv.Addr),
		zap.String("backend", cfg.Store.Backend),
		zap.String("environment", cfg.App.Environment))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.App.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newStore picks the record store backend from config. The file backend is
// the default; postgres serves deployments that outgrow flat JSON containers.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "file":
		fs, err := store.NewFileStore(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	case "postgres":
		conn, err := db.NewPostgresConnection(
			ctx, cfg.Database.GetDatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, err
		}
		pg, err := repository.NewPostgresStore(ctx, conn)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return pg, func() { conn.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
