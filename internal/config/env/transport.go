package env

import (
	"crash_backend/internal/config"
	"errors"
	"time"
)

type transportConfig struct {
	URLValue       string        `env:"CLIENT_URL" envDefault:"ws://localhost:8080/ws"`
	TokenValue     string        `env:"CLIENT_TOKEN"`
	MaxReconnect   int           `env:"CLIENT_MAX_RECONNECT_ATTEMPTS" envDefault:"5"`
	ReconnectDelay time.Duration `env:"CLIENT_RECONNECT_INTERVAL" envDefault:"3s"`
	Heartbeat      time.Duration `env:"CLIENT_HEARTBEAT_INTERVAL" envDefault:"30s"`
	Timeout        time.Duration `env:"CLIENT_REQUEST_TIMEOUT" envDefault:"10s"`
	Handshake      time.Duration `env:"CLIENT_HANDSHAKE_TIMEOUT" envDefault:"5s"`
}

func NewTransportConfig() (config.TransportConfig, error) {
	var cfg transportConfig
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.MaxReconnect < 0 {
		return nil, errors.New("reconnect attempts must not be negative")
	}
	if cfg.Heartbeat <= 0 || cfg.Timeout <= 0 || cfg.ReconnectDelay <= 0 {
		return nil, errors.New("transport intervals must be positive")
	}
	return &cfg, nil
}

func (cfg *transportConfig) URL() string {
	return cfg.URLValue
}

func (cfg *transportConfig) Token() string {
	return cfg.TokenValue
}

func (cfg *transportConfig) MaxReconnectAttempts() int {
	return cfg.MaxReconnect
}

func (cfg *transportConfig) ReconnectInterval() time.Duration {
	return cfg.ReconnectDelay
}

func (cfg *transportConfig) HeartbeatInterval() time.Duration {
	return cfg.Heartbeat
}

func (cfg *transportConfig) RequestTimeout() time.Duration {
	return cfg.Timeout
}

func (cfg *transportConfig) HandshakeTimeout() time.Duration {
	return cfg.Handshake
}
