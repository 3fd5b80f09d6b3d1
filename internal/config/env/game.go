package env

import (
	"crash_backend/internal/config"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type gameFile struct {
	Game gameConfig `yaml:"game"`
}

type gameConfig struct {
	MinBetValue          int64              `yaml:"min_bet"`
	MaxBetValue          int64              `yaml:"max_bet"`
	BetOptionsValue      []int64            `yaml:"bet_options"`
	MaxBetCountValue     int                `yaml:"max_bet_count"`
	ServiceFeeRateValue  float64            `yaml:"service_fee_rate"`
	AutoCashoutMinValue  float64            `yaml:"auto_cashout_min"`
	AutoCashoutMaxValue  float64            `yaml:"auto_cashout_max"`
	WagerDurationValue   time.Duration      `yaml:"wager_duration"`
	DeadDurationValue    time.Duration      `yaml:"dead_duration"`
	IdleDurationValue    time.Duration      `yaml:"idle_duration"`
	TickIntervalValue    time.Duration      `yaml:"tick_interval"`
	GrowthRateValue      float64            `yaml:"growth_rate"`
	MaxMultiplierValue   float64            `yaml:"max_multiplier"`
	CrashTiersValue      []config.CrashTier `yaml:"crash_tiers"`
	HistorySizeValue     int                `yaml:"history_size"`
	StartingBalanceValue int64              `yaml:"starting_balance"`
}

// DefaultGameConfig - stock tuning used when config.yaml is absent or silent
func DefaultGameConfig() config.GameConfig {
	cfg := defaultGame()
	return &cfg
}

func defaultGame() gameConfig {
	return gameConfig{
		MinBetValue:         10,
		MaxBetValue:         100000,
		BetOptionsValue:     []int64{10, 50, 100, 500, 1000, 5000},
		MaxBetCountValue:    5,
		ServiceFeeRateValue: 0.05,
		AutoCashoutMinValue: 1.01,
		AutoCashoutMaxValue: 1000,
		WagerDurationValue:  10 * time.Second,
		DeadDurationValue:   5 * time.Second,
		TickIntervalValue:   100 * time.Millisecond,
		GrowthRateValue:     0.06,
		MaxMultiplierValue:  1000,
		CrashTiersValue: []config.CrashTier{
			{Weight: 0.87, Min: 0.1, Max: 3.0},
			{Weight: 0.10, Min: 3.0, Max: 10.0},
			{Weight: 0.03, Min: 10.0, Max: 1000.0},
		},
		HistorySizeValue:     100,
		StartingBalanceValue: 100000,
	}
}

// NewGameConfigFromYAML reads the `game` section of path over the defaults.
// A missing file yields the defaults.
func NewGameConfigFromYAML(path string) (config.GameConfig, error) {
	file := gameFile{Game: defaultGame()}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &file.Game, nil
		}
		return nil, fmt.Errorf("read game config: %w", err)
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode game config: %w", err)
	}

	if err := file.Game.validate(); err != nil {
		return nil, err
	}
	return &file.Game, nil
}

func (g *gameConfig) validate() error {
	switch {
	case g.MinBetValue <= 0:
		return errors.New("min_bet must be positive")
	case g.MaxBetValue < g.MinBetValue:
		return errors.New("max_bet must not be below min_bet")
	case g.MaxBetCountValue <= 0:
		return errors.New("max_bet_count must be positive")
	case g.ServiceFeeRateValue < 0 || g.ServiceFeeRateValue >= 1:
		return errors.New("service_fee_rate must be in [0, 1)")
	case g.AutoCashoutMinValue <= 1 || g.AutoCashoutMaxValue < g.AutoCashoutMinValue:
		return errors.New("auto cashout range must be above 1")
	case g.WagerDurationValue <= 0 || g.DeadDurationValue <= 0 || g.TickIntervalValue <= 0:
		return errors.New("durations must be positive")
	case g.IdleDurationValue < 0:
		return errors.New("idle_duration must not be negative")
	case g.GrowthRateValue <= 0:
		return errors.New("growth_rate must be positive")
	case g.MaxMultiplierValue <= 1:
		return errors.New("max_multiplier must be above 1")
	case g.HistorySizeValue <= 0:
		return errors.New("history_size must be positive")
	case g.StartingBalanceValue < 0:
		return errors.New("starting_balance must not be negative")
	}

	if len(g.CrashTiersValue) == 0 {
		return errors.New("crash_tiers must not be empty")
	}
	var total float64
	for i, t := range g.CrashTiersValue {
		if t.Weight <= 0 || t.Min <= 0 || t.Max <= t.Min {
			return fmt.Errorf("crash tier %d is invalid", i)
		}
		total += t.Weight
	}
	if math.Abs(total-1) > 1e-6 {
		return fmt.Errorf("crash tier weights sum to %.4f, want 1", total)
	}
	return nil
}

func (g *gameConfig) MinBet() int64 {
	return g.MinBetValue
}

func (g *gameConfig) MaxBet() int64 {
	return g.MaxBetValue
}

func (g *gameConfig) BetOptions() []int64 {
	return append([]int64(nil), g.BetOptionsValue...)
}

func (g *gameConfig) MaxBetCount() int {
	return g.MaxBetCountValue
}

func (g *gameConfig) ServiceFeeRate() float64 {
	return g.ServiceFeeRateValue
}

func (g *gameConfig) AutoCashoutMin() float64 {
	return g.AutoCashoutMinValue
}

func (g *gameConfig) AutoCashoutMax() float64 {
	return g.AutoCashoutMaxValue
}

func (g *gameConfig) WagerDuration() time.Duration {
	return g.WagerDurationValue
}

func (g *gameConfig) DeadDuration() time.Duration {
	return g.DeadDurationValue
}

func (g *gameConfig) IdleDuration() time.Duration {
	return g.IdleDurationValue
}

func (g *gameConfig) TickInterval() time.Duration {
	return g.TickIntervalValue
}

func (g *gameConfig) GrowthRate() float64 {
	return g.GrowthRateValue
}

func (g *gameConfig) MaxMultiplier() float64 {
	return g.MaxMultiplierValue
}

func (g *gameConfig) CrashTiers() []config.CrashTier {
	return append([]config.CrashTier(nil), g.CrashTiersValue...)
}

func (g *gameConfig) HistorySize() int {
	return g.HistorySizeValue
}

func (g *gameConfig) StartingBalance() int64 {
	return g.StartingBalanceValue
}
