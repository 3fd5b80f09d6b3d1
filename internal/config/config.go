package config

import (
	"time"

	"github.com/joho/godotenv"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

// CrashTier - one weighted band of the crash point distribution
type CrashTier struct {
	Weight float64 `yaml:"weight"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
}

type GameConfig interface {
	MinBet() int64
	MaxBet() int64
	BetOptions() []int64
	MaxBetCount() int
	ServiceFeeRate() float64
	AutoCashoutMin() float64
	AutoCashoutMax() float64

	WagerDuration() time.Duration
	DeadDuration() time.Duration
	IdleDuration() time.Duration
	TickInterval() time.Duration

	GrowthRate() float64
	MaxMultiplier() float64
	CrashTiers() []CrashTier

	HistorySize() int
	StartingBalance() int64
}

type HTTPConfig interface {
	Address() string
	ReadTimeout() time.Duration
	WriteTimeout() time.Duration
	ShutdownTimeout() time.Duration
}

type PGConfig interface {
	DSN() string
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
	AccessTokenDuration() time.Duration
}

type LogConfig interface {
	Level() string
	Format() string
}

type TransportConfig interface {
	URL() string
	Token() string
	MaxReconnectAttempts() int
	ReconnectInterval() time.Duration
	HeartbeatInterval() time.Duration
	RequestTimeout() time.Duration
	HandshakeTimeout() time.Duration
}
