package round

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/internal/service/ledger"
)

// Join seats a player. A player already seated keeps the engine's balance,
// which is returned; balance is used only for new players.
func (e *Engine) Join(ctx context.Context, id string, balance int64) (int64, error) {
	var out int64
	err := e.do(ctx, func() {
		if l, ok := e.ledgers[id]; ok {
			delete(e.departed, id)
			out = l.Balance()
			return
		}
		l := ledger.New(id, balance, roundView{e}, e.limits, e.bus)
		e.ledgers[id] = l
		e.order = append(e.order, id)
		out = balance
	})
	return out, err
}

// Leave unseats a player. Players with bets in the current round stay until
// the next wager opens so the round still settles them.
func (e *Engine) Leave(ctx context.Context, id string) error {
	return e.do(ctx, func() {
		l, ok := e.ledgers[id]
		if !ok {
			return
		}
		if len(l.Bets()) > 0 {
			e.departed[id] = struct{}{}
			return
		}
		e.remove(id)
	})
}

func (e *Engine) PlaceBet(ctx context.Context, id string, amount int64, autoCashout float64) (model.BetReceipt, error) {
	var (
		receipt model.BetReceipt
		opErr   error
	)
	err := e.do(ctx, func() {
		l, err := e.active(id)
		if err != nil {
			opErr = err
			return
		}
		idx, bet, err := l.PlaceBet(amount, autoCashout)
		if err != nil {
			opErr = err
			return
		}
		receipt = model.BetReceipt{RoundID: e.round.ID, Index: idx, Bet: bet, Balance: l.Balance()}
		e.emitPlayers()
	})
	if err != nil {
		return model.BetReceipt{}, err
	}
	return receipt, opErr
}

func (e *Engine) CashoutSingle(ctx context.Context, id string, index int) (model.Cashout, int64, error) {
	var (
		c       model.Cashout
		balance int64
		opErr   error
	)
	err := e.do(ctx, func() {
		l, err := e.active(id)
		if err != nil {
			opErr = err
			return
		}
		if e.mult.Reached() {
			opErr = model.ErrInvalidPhase
			return
		}
		c, opErr = l.CashoutSingle(index)
		balance = l.Balance()
		if opErr == nil {
			e.emitPlayers()
		}
	})
	if err != nil {
		return model.Cashout{}, 0, err
	}
	return c, balance, opErr
}

// Takeout cashes out every active bet of the player at the current multiplier.
func (e *Engine) Takeout(ctx context.Context, id string) (model.TakeoutReceipt, error) {
	var (
		receipt model.TakeoutReceipt
		opErr   error
	)
	err := e.do(ctx, func() {
		l, err := e.active(id)
		if err != nil {
			opErr = err
			return
		}
		if e.mult.Reached() {
			opErr = model.ErrInvalidPhase
			return
		}
		cashouts, err := l.CashoutAll()
		if err != nil {
			opErr = err
			return
		}

		receipt = model.TakeoutReceipt{
			RoundID:    e.round.ID,
			Multiplier: e.mult.Current(),
			Balance:    l.Balance(),
			Cashouts:   cashouts,
		}
		for _, c := range cashouts {
			receipt.WinAmount += c.Winnings
		}
		e.emitPlayers()
	})
	if err != nil {
		return model.TakeoutReceipt{}, err
	}
	return receipt, opErr
}

func (e *Engine) RepeatLastBets(ctx context.Context, id string) ([]model.Bet, int64, error) {
	var (
		bets    []model.Bet
		balance int64
		opErr   error
	)
	err := e.do(ctx, func() {
		l, err := e.active(id)
		if err != nil {
			opErr = err
			return
		}
		bets, opErr = l.RepeatLastBets()
		balance = l.Balance()
		if opErr == nil {
			e.emitPlayers()
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return bets, balance, opErr
}

// Snapshot - current state; the crash point only once revealed
func (e *Engine) Snapshot(ctx context.Context) (model.GameState, error) {
	var s model.GameState
	err := e.do(ctx, func() {
		s = model.GameState{
			Phase:      e.machine.Current(),
			RoundID:    e.round.ID,
			Multiplier: e.mult.Current(),
			Elapsed:    e.mult.Elapsed(),
		}
		if s.Phase == model.PhaseWager || s.Phase == model.PhaseSettle {
			s.Countdown = e.countdown
		}
		if s.Phase.Revealed() {
			s.CrashPoint = e.round.CrashPoint
		}
	})
	return s, err
}

// Bets - the player's bets in the current round
func (e *Engine) Bets(ctx context.Context, id string) ([]model.Bet, error) {
	var (
		bets  []model.Bet
		opErr error
	)
	err := e.do(ctx, func() {
		l, ok := e.ledgers[id]
		if !ok {
			opErr = model.ErrPlayerNotFound
			return
		}
		bets = l.Bets()
	})
	if err != nil {
		return nil, err
	}
	return bets, opErr
}

func (e *Engine) Balance(ctx context.Context, id string) (int64, error) {
	var (
		balance int64
		opErr   error
	)
	err := e.do(ctx, func() {
		l, ok := e.ledgers[id]
		if !ok {
			opErr = model.ErrPlayerNotFound
			return
		}
		balance = l.Balance()
	})
	if err != nil {
		return 0, err
	}
	return balance, opErr
}

// History - newest first; limit <= 0 returns everything kept
func (e *Engine) History(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	var out []model.HistoryRecord
	err := e.do(ctx, func() {
		out = e.historyCopy(limit)
	})
	return out, err
}

// SeedHistory replaces the history ring, newest first. Used at startup.
func (e *Engine) SeedHistory(ctx context.Context, records []model.HistoryRecord) error {
	return e.do(ctx, func() {
		e.history = nil
		for i := len(records) - 1; i >= 0; i-- {
			e.record(records[i])
		}
		e.todayHighest = 0
	})
}

func (e *Engine) Players(ctx context.Context) ([]model.PlayerBet, error) {
	var out []model.PlayerBet
	err := e.do(ctx, func() {
		out = e.playerBets()
	})
	return out, err
}

// Highest - today's and all-time highest crash points
func (e *Engine) Highest(ctx context.Context) (today, allTime float64, err error) {
	err = e.do(ctx, func() {
		today, allTime = e.todayHighest, e.allTimeHighest
	})
	return today, allTime, err
}

func (e *Engine) ResetDailyHighest(ctx context.Context) error {
	return e.do(ctx, func() {
		e.todayHighest = 0
		e.log.Info("daily highest reset")
	})
}
