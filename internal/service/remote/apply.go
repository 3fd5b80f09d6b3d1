package remote

import (
	"crash_backend/internal/event"
	"crash_backend/internal/model"
	"crash_backend/internal/protocol"
	"time"

	"go.uber.org/zap"
)

// apply runs one server push on the loop goroutine.
func (e *Engine) apply(env protocol.Envelope) {
	var err error
	switch env.Type {
	case protocol.GameState:
		err = bind(env, e.onGameState)
	case protocol.WagerStart:
		err = bind(env, e.onWagerStart)
	case protocol.GameStart:
		err = bind(env, e.onGameStart)
	case protocol.MultipleUpdate:
		err = bind(env, e.onMultipleUpdate)
	case protocol.GameCrash:
		err = bind(env, e.onGameCrash)
	case protocol.GameSettle:
		err = bind(env, e.onGameSettle)
	case protocol.UserInfo:
		err = bind(env, e.onUserInfo)
	case protocol.History:
		err = bind(env, e.onHistory)
	case protocol.PlayerList:
		err = bind(env, e.onPlayerList)
	case protocol.TakeoutResult:
		err = bind(env, e.onAutoTakeout)
	case protocol.Error:
		err = bind(env, func(d protocol.ErrorData) {
			e.bus.Emit(event.Error, event.Failure{Op: "server", Err: &ServerError{Message: d.Error}})
		})
	default:
		e.log.Debug("ignoring message", zap.String("type", string(env.Type)))
	}
	if err != nil {
		e.log.Warn("bad server message", zap.String("type", string(env.Type)), zap.Error(err))
	}
}

func bind[T any](env protocol.Envelope, fn func(T)) error {
	v, err := protocol.Bind[T](env)
	if err != nil {
		return err
	}
	fn(v)
	return nil
}

// ServerError - error pushed by the server outside any request
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server: " + e.Message
}

// onGameState resyncs without replaying transitions.
func (e *Engine) onGameState(d protocol.GameStateData) {
	if d.RoundID != e.roundID {
		e.ledger.ResetForNewRound()
	}
	e.roundID = d.RoundID
	e.countdown = d.Countdown
	e.crashPoint = d.CrashPoint

	switch d.State {
	case model.PhaseRunning:
		if !e.mult.Running() {
			e.mult.Start(0)
		}
		e.mult.Sync(d.Multiple, d.Elapsed)
	case model.PhaseCrashed, model.PhaseSettle:
		e.mult.Freeze(d.CrashPoint)
	default:
		e.mult.Reset()
	}
	e.machine.Force(d.State)
}

func (e *Engine) onWagerStart(d protocol.WagerStartData) {
	e.roundID = d.RoundID
	e.countdown = d.Countdown
	if !e.machine.ChangeState(model.PhaseWager) {
		// a new round announced while already wagering
		e.enterWager(model.PhaseWager)
	}
	e.bus.Emit(event.WagerStarted, event.Wager{RoundID: d.RoundID, Countdown: d.Countdown})
}

func (e *Engine) onGameStart(d protocol.GameStartData) {
	e.roundID = d.RoundID
	e.machine.ChangeState(model.PhaseRunning)
	e.bus.Emit(event.RoundStarted, event.Start{RoundID: d.RoundID})
}

func (e *Engine) onMultipleUpdate(d protocol.MultipleUpdateData) {
	if !e.machine.Is(model.PhaseRunning) {
		return
	}
	m := e.mult.Sync(d.Multiple, d.Elapsed)
	e.bus.Emit(event.MultiplierUpdated, event.Multiplier{RoundID: d.RoundID, Multiplier: m, Elapsed: e.mult.Elapsed()})
}

func (e *Engine) onGameCrash(d protocol.GameCrashData) {
	e.roundID = d.RoundID
	e.crashPoint = d.CrashPoint
	e.machine.ChangeState(model.PhaseCrashed)
}

func (e *Engine) onGameSettle(d protocol.GameSettleData) {
	e.crashPoint = d.CrashPoint
	e.record(model.HistoryRecord{RoundID: d.RoundID, CrashPoint: d.CrashPoint, Timestamp: e.clk.Now()})

	result := model.RoundResult{RoundID: d.RoundID, CrashPoint: d.CrashPoint, SettledAt: e.clk.Now()}
	if u := d.UserResult; u != nil {
		e.ledger.SetBalance(u.Balance)
		result.Players = []model.PlayerSummary{{
			PlayerID: e.user.UserID,
			Balance:  u.Balance,
			RoundSummary: model.RoundSummary{
				TotalBet: u.BetAmount,
				TotalWin: u.WinAmount,
				Profit:   u.WinAmount - u.BetAmount,
				Bets:     e.ledger.Bets(),
			},
		}}
	}

	e.machine.ChangeState(model.PhaseSettle)
	e.bus.Emit(event.RoundSettled, event.Settle{Result: result})
}

func (e *Engine) onUserInfo(d protocol.UserInfoData) {
	e.user = d
	e.ledger.SetBalance(d.Balance)
	e.bus.Emit(event.UserInfo, model.UserInfo{
		UserID:   d.UserID,
		Username: d.Username,
		Avatar:   d.Avatar,
		Balance:  d.Balance,
	})
}

func (e *Engine) onHistory(d protocol.HistoryData) {
	size := e.cfg.HistorySize()
	e.history = make([]model.HistoryRecord, 0, len(d.Records))
	for _, r := range d.Records {
		if len(e.history) == size {
			break
		}
		e.history = append(e.history, model.HistoryRecord{
			RoundID:    r.RoundID,
			CrashPoint: r.CrashPoint,
			Timestamp:  time.UnixMilli(r.Timestamp),
		})
	}
	e.bus.Emit(event.HistoryUpdated, event.History{Records: e.historyCopy()})
}

func (e *Engine) onPlayerList(d protocol.PlayerListData) {
	bets := make([]model.PlayerBet, 0, len(d.Players))
	for _, p := range d.Players {
		bets = append(bets, model.PlayerBet{
			PlayerID:          p.ID,
			Amount:            p.BetAmount,
			CashedOut:         p.TakeoutMultiple > 0,
			CashoutMultiplier: p.TakeoutMultiple,
			Winnings:          p.WinAmount,
		})
	}
	e.bus.Emit(event.PlayersChanged, event.Players{RoundID: d.RoundID, Bets: bets})
}

// onAutoTakeout handles a takeout_result that answered no request: the
// server cashed out on the player's behalf.
func (e *Engine) onAutoTakeout(d protocol.TakeoutResultData) {
	if !d.Success {
		return
	}
	cashouts := e.mirrorCashout(d)
	e.log.Debug("server cashout applied",
		zap.String("round_id", d.RoundID),
		zap.Float64("multiple", d.Multiple),
		zap.Int("bets", len(cashouts)))
}

// mirrorCashout applies a takeout_result to the local ledger. Results naming
// their bets touch only those, so a manual takeout never overwrites an auto
// cashout still queued behind it.
func (e *Engine) mirrorCashout(d protocol.TakeoutResultData) []model.Cashout {
	if len(d.BetIndices) > 0 {
		return e.ledger.ApplyRemoteCashoutAt(d.BetIndices, d.Multiple, d.Auto, d.Balance)
	}
	return e.ledger.ApplyRemoteCashout(d.Multiple, d.Auto, d.Balance)
}

func (e *Engine) record(r model.HistoryRecord) {
	e.history = append([]model.HistoryRecord{r}, e.history...)
	if size := e.cfg.HistorySize(); len(e.history) > size {
		e.history = e.history[:size]
	}
	e.bus.Emit(event.HistoryUpdated, event.History{Records: e.historyCopy()})
}

func (e *Engine) historyCopy() []model.HistoryRecord {
	return append([]model.HistoryRecord(nil), e.history...)
}
