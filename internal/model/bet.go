package model

import "time"

// Bet - a single bet within a round
type Bet struct {
	Amount            int64
	AutoCashout       float64 // 0 means no auto cashout
	CashedOut         bool
	CashoutMultiplier float64
	Winnings          int64
	Profit            int64
	PlacedAt          time.Time
}

// Cashout - outcome of cashing out one bet
type Cashout struct {
	Index      int
	Multiplier float64
	Winnings   int64
	Profit     int64
	Auto       bool
}

// RoundSummary - aggregate over a round's bets
type RoundSummary struct {
	TotalBet int64
	TotalWin int64
	Profit   int64
	Bets     []Bet
}

// BetReceipt - accepted bet
type BetReceipt struct {
	RoundID string
	Index   int
	Bet     Bet
	Balance int64
}

// TakeoutReceipt - outcome of cashing out every active bet
type TakeoutReceipt struct {
	RoundID    string
	Multiplier float64
	WinAmount  int64
	Balance    int64
	Cashouts   []Cashout
}
