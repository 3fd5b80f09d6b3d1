package env

import (
	"crash_backend/internal/config"
	"fmt"
	"time"
)

type jwtConfig struct {
	SecretKey string        `env:"ACCESS_TOKEN"`
	Duration  time.Duration `env:"ACCESS_TOKEN_DURATION" envDefault:"24h"`
}

func NewJWTConfig() (config.JWTConfig, error) {
	var cfg jwtConfig
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.SecretKey) == 0 {
		return nil, fmt.Errorf("access token secret key not found")
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("invalid access token duration: %s", cfg.Duration)
	}

	return &cfg, nil
}

func (j *jwtConfig) AccessTokenSecretKey() []byte {
	return []byte(j.SecretKey)
}

func (j *jwtConfig) AccessTokenDuration() time.Duration {
	return j.Duration
}
