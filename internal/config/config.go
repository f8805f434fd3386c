package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers de armazenamento suportados.
const (
	StorageJSON     = "json"
	StoragePostgres = "postgres"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	StorageDriver   string
	DBDSN           string
	DataDir         string
	RedisURL        string
	JWTSecret       string
	JWTAccessTTL    time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", StorageJSON)))
	switch cfg.StorageDriver {
	case StorageJSON:
		cfg.DataDir = getEnv("DATA_DIR", "data")
	case StoragePostgres:
		cfg.DBDSN = getEnv("DB_DSN", "")
		if cfg.DBDSN == "" {
			return nil, errors.New("DB_DSN obrigatório com STORAGE_DRIVER=postgres")
		}
	default:
		return nil, errors.New("STORAGE_DRIVER deve ser json ou postgres")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
