package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	BankCode string `env:"BANK_CODE" envDefault:"001"`
	BankName string `env:"BANK_NAME" envDefault:"ACME Bank"`

	// Account number generation mixes true randomness, so collisions are
	// possible; this bounds the regeneration loop.
	AccountGenMaxAttempts int `env:"ACCOUNT_GEN_MAX_ATTEMPTS" envDefault:"5"`
	TransferTimeoutS      int `env:"TRANSFER_TIMEOUT_S" envDefault:"15"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
