package env

import (
	"crash_backend/internal/config"
)

type logConfig struct {
	LevelValue  string `env:"LOG_LEVEL" envDefault:"info"`
	FormatValue string `env:"LOG_FORMAT" envDefault:"json"`
}

func NewLogConfig() (config.LogConfig, error) {
	var cfg logConfig
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *logConfig) Level() string {
	return cfg.LevelValue
}

func (cfg *logConfig) Format() string {
	return cfg.FormatValue
}
