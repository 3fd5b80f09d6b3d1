package event

import (
	"crash_backend/internal/model"
)

// Round lifecycle
const (
	PhaseChanged      Topic = "phase.changed"
	WagerStarted      Topic = "round.wager_started"
	CountdownTick     Topic = "round.countdown"
	RoundStarted      Topic = "round.started"
	MultiplierUpdated Topic = "round.multiplier"
	RoundCrashed      Topic = "round.crashed"
	RoundSettled      Topic = "round.settled"
	HistoryUpdated    Topic = "round.history"
)

// Ledger
const (
	BetsChanged    Topic = "ledger.bets_changed"
	CashedOut      Topic = "ledger.cashed_out"
	BalanceChanged Topic = "ledger.balance_changed"
	PlayersChanged Topic = "ledger.players_changed"
)

// Session
const (
	Connected     Topic = "session.connected"
	Authenticated Topic = "session.authenticated"
	Reconnecting  Topic = "session.reconnecting"
	Disconnected  Topic = "session.disconnected"
	UserInfo      Topic = "session.user_info"
	Error         Topic = "error"
)

type PhaseChange struct {
	From model.Phase
	To   model.Phase
}

type Wager struct {
	RoundID   string
	Countdown float64
}

type Countdown struct {
	RoundID   string
	Phase     model.Phase
	Remaining float64
}

type Start struct {
	RoundID string
}

type Multiplier struct {
	RoundID    string
	Multiplier float64
	Elapsed    float64
}

type Crash struct {
	RoundID    string
	CrashPoint float64
}

type Settle struct {
	Result model.RoundResult
}

type History struct {
	Records []model.HistoryRecord
}

type Bets struct {
	Owner   string
	Bets    []model.Bet
	Balance int64
}

type Cashout struct {
	Owner   string
	RoundID string
	Cashout model.Cashout
	Balance int64
}

type Balance struct {
	Owner   string
	Balance int64
}

type Players struct {
	RoundID string
	Bets    []model.PlayerBet
}

type Reconnect struct {
	Attempt int
	Max     int
}

type Disconnect struct {
	Fatal bool
	Err   error
}

// Failure - error surfaced to subscribers instead of a return value
type Failure struct {
	Op  string
	Err error
}
