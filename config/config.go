package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the server needs at startup. It is built once in
// main and passed down explicitly; there is no package-level config state.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisAddr   string
	LogLevel    string
	BcryptCost  int
}

// Load reads configuration from the environment, after loading .env if one
// is present.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := Config{
		Addr:        os.Getenv("PORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		BcryptCost:  bcrypt.DefaultCost,
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	} else if cfg.Addr[0] != ':' {
		cfg.Addr = ":" + cfg.Addr
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "postgres://localhost/cookbook?sslmode=disable"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil && cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			cfg.BcryptCost = cost
		}
	}

	return cfg
}
