package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/declafisc/declarations/internal/auth"
	"github.com/declafisc/declarations/internal/config"
	"github.com/declafisc/declarations/internal/db"
	"github.com/declafisc/declarations/internal/jsonstore"
	"github.com/declafisc/declarations/internal/policy"
	"github.com/declafisc/declarations/internal/user"
	"github.com/declafisc/declarations/internal/util"
)

// userUpserter é o mínimo de Credential Store que a ferramenta precisa.
type userUpserter interface {
	UpsertUser(ctx context.Context, u user.User) error
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("createadmin falhou")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	_ = godotenv.Load()

	username := flag.String("username", "", "identifiant da conta admin")
	fullname := flag.String("fullname", "", "nome exibido")
	password := flag.String("password", "", "senha em claro (será hasheada)")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		return fmt.Errorf("username e password são obrigatórios")
	}
	if err := util.ValidateUsername(*username); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	u := user.User{
		Username: *username,
		Fullname: *fullname,
		Password: hash,
		Role:     string(policy.RoleAdmin),
	}
	if err := store.UpsertUser(ctx, u); err != nil {
		return fmt.Errorf("gravar conta: %w", err)
	}

	log.Info().Str("username", u.Username).Msg("conta admin criada ou atualizada")
	return nil
}

// openStore escolhe o backend pelo mesmo STORAGE_DRIVER da API, sem exigir
// o restante do ambiente dela.
func openStore(ctx context.Context) (userUpserter, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER")))
	if driver == "" {
		driver = config.StorageJSON
	}

	switch driver {
	case config.StorageJSON:
		dir := os.Getenv("DATA_DIR")
		if dir == "" {
			dir = "data"
		}
		return jsonstore.New(dir)

	case config.StoragePostgres:
		dsn := os.Getenv("DB_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("DB_DSN obrigatório com STORAGE_DRIVER=postgres")
		}
		pool, err := db.NewPool(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return nil, fmt.Errorf("migrações: %w", err)
		}
		return user.NewRepository(pool), nil

	default:
		return nil, fmt.Errorf("STORAGE_DRIVER deve ser json ou postgres")
	}
}
