package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/declafisc/declarations/internal/auth"
	"github.com/declafisc/declarations/internal/config"
	"github.com/declafisc/declarations/internal/db"
	"github.com/declafisc/declarations/internal/entry"
	internalhttp "github.com/declafisc/declarations/internal/http"
	"github.com/declafisc/declarations/internal/jsonstore"
	"github.com/declafisc/declarations/internal/service"
	"github.com/declafisc/declarations/internal/settings"
	"github.com/declafisc/declarations/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	var pool *pgxpool.Pool
	stores := internalhttp.Stores{}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, cfg.DBDSN); err != nil {
			return fmt.Errorf("migrações: %w", err)
		}

		stores.Users = user.NewRepository(pool)
		stores.Entries = entry.NewRepository(pool)
		stores.Settings = settings.NewRepository(pool)
		log.Info().Msg("armazenamento: postgres")

	case config.StorageJSON:
		store, err := jsonstore.New(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("jsonstore: %w", err)
		}
		stores.Users = store
		stores.Entries = store
		stores.Settings = store
		log.Info().Str("dir", cfg.DataDir).Msg("armazenamento: arquivos json")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(stores.Users, jwtManager)

	handler, err := internalhttp.NewRouter(cfg, pool, redisClient, authService, stores)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
