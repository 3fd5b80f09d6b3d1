package protocol

import (
	"crash_backend/internal/model"
)

type AuthData struct {
	Token string `json:"token"`
}

// Result - common reply fields
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type AuthResultData struct {
	Result
}

type GameStateData struct {
	State      model.Phase `json:"state"`
	RoundID    string      `json:"roundId"`
	Multiple   float64     `json:"multiple,omitempty"`
	Countdown  float64     `json:"countdown,omitempty"`
	CrashPoint float64     `json:"crashPoint,omitempty"`
	Elapsed    float64     `json:"elapsedTime,omitempty"`
}

type WagerStartData struct {
	RoundID   string  `json:"roundId"`
	Countdown float64 `json:"countdown"`
}

type GameStartData struct {
	RoundID string `json:"roundId"`
}

type MultipleUpdateData struct {
	RoundID  string  `json:"roundId"`
	Multiple float64 `json:"multiple"`
	Elapsed  float64 `json:"elapsedTime"`
}

type GameCrashData struct {
	RoundID    string  `json:"roundId"`
	CrashPoint float64 `json:"crashPoint"`
}

// UserResult - the receiving player's share of a settled round
type UserResult struct {
	BetAmount       int64    `json:"betAmount"`
	TakeoutMultiple *float64 `json:"takeoutMultiple"`
	WinAmount       int64    `json:"winAmount"`
	Balance         int64    `json:"balance"`
}

type GameSettleData struct {
	RoundID    string      `json:"roundId"`
	CrashPoint float64     `json:"crashPoint"`
	Countdown  float64     `json:"countdown,omitempty"`
	UserResult *UserResult `json:"userResult,omitempty"`
}

type BetRequestData struct {
	RoundID     string  `json:"roundId"`
	Amount      int64   `json:"amount"`
	AutoTakeout float64 `json:"autoTakeout,omitempty"`
}

type BetResultData struct {
	Result
	RoundID     string  `json:"roundId"`
	BetAmount   int64   `json:"betAmount,omitempty"`
	AutoTakeout float64 `json:"autoTakeout,omitempty"`
	Balance     int64   `json:"balance,omitempty"`
}

type TakeoutRequestData struct {
	RoundID string `json:"roundId"`
}

// TakeoutResultData - reply to takeout_request; with Auto set it is pushed
// unsolicited after an auto cashout.
type TakeoutResultData struct {
	Result
	RoundID   string  `json:"roundId"`
	Multiple  float64 `json:"multiple,omitempty"`
	WinAmount int64   `json:"winAmount,omitempty"`
	Balance   int64   `json:"balance,omitempty"`
	Auto      bool    `json:"auto,omitempty"`

	// BetIndices - bets this result cashed out
	BetIndices []int `json:"betIndices,omitempty"`
}

type UserInfoData struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Balance  int64  `json:"balance"`
}

type HistoryRecord struct {
	RoundID    string  `json:"roundId"`
	CrashPoint float64 `json:"crashPoint"`
	Timestamp  int64   `json:"timestamp"`
}

type HistoryData struct {
	Records []HistoryRecord `json:"records"`
}

type PlayerEntry struct {
	ID              string  `json:"odId"`
	Username        string  `json:"username"`
	BetAmount       int64   `json:"betAmount,omitempty"`
	TakeoutMultiple float64 `json:"takeoutMultiple,omitempty"`
	WinAmount       int64   `json:"winAmount,omitempty"`
}

type PlayerListData struct {
	RoundID string        `json:"roundId,omitempty"`
	Players []PlayerEntry `json:"players"`
}

type ErrorData struct {
	Error string `json:"error"`
}

func FromState(s model.GameState) GameStateData {
	return GameStateData{
		State:      s.Phase,
		RoundID:    s.RoundID,
		Multiple:   s.Multiplier,
		Countdown:  s.Countdown,
		CrashPoint: s.CrashPoint,
		Elapsed:    s.Elapsed,
	}
}

func FromHistory(records []model.HistoryRecord) HistoryData {
	out := HistoryData{Records: make([]HistoryRecord, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, HistoryRecord{
			RoundID:    r.RoundID,
			CrashPoint: r.CrashPoint,
			Timestamp:  r.Timestamp.UnixMilli(),
		})
	}
	return out
}

// FromSummary - userResult of one player. The takeout multiple is the last
// cashout of the round, nil when nothing was cashed out.
func FromSummary(p model.PlayerSummary) *UserResult {
	r := &UserResult{
		BetAmount: p.TotalBet,
		WinAmount: p.TotalWin,
		Balance:   p.Balance,
	}
	for _, b := range p.Bets {
		if b.CashedOut {
			m := b.CashoutMultiplier
			r.TakeoutMultiple = &m
		}
	}
	return r
}
