package env

import (
	"crash_backend/internal/config"
	"errors"
)

type pgConfig struct {
	DSNValue string `env:"PG_DSN"`
}

// NewPGConfig fails when PG_DSN is unset; callers fall back to in-memory storage.
func NewPGConfig() (config.PGConfig, error) {
	var cfg pgConfig
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.DSNValue) == 0 {
		return nil, errors.New("pg dsn not found")
	}

	return &cfg, nil
}

func (cfg *pgConfig) DSN() string {
	return cfg.DSNValue
}
