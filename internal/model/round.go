package model

import "time"

// Round - the round owned by the engine. CrashPoint is never serialized
type Round struct {
	ID            string
	Phase         Phase
	CrashPoint    float64 `json:"-"`
	StartedAt     time.Time
	WagerDuration time.Duration
	DeadDuration  time.Duration
}

// GameState - read-only snapshot for external consumers
type GameState struct {
	Phase      Phase
	RoundID    string
	Multiplier float64
	Countdown  float64
	CrashPoint float64 // 0 until the phase reveals it
	Elapsed    float64
}

// PlayerSummary - one player's round outcome
type PlayerSummary struct {
	PlayerID string
	Balance  int64
	RoundSummary
}

// RoundResult - settled round, persisted and broadcast
type RoundResult struct {
	RoundID    string
	CrashPoint float64
	SettledAt  time.Time
	Players    []PlayerSummary
}

// PlayerBet - read-only projection of another player's bet
type PlayerBet struct {
	PlayerID          string  `json:"playerId"`
	Amount            int64   `json:"amount"`
	CashedOut         bool    `json:"cashedOut"`
	CashoutMultiplier float64 `json:"cashoutMultiplier,omitempty"`
	Winnings          int64   `json:"winnings,omitempty"`
}
