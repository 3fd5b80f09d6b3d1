package remote

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/internal/protocol"
	"fmt"
)

// PlaceBet validates locally, asks the server, then mirrors the accepted bet.
func (e *Engine) PlaceBet(ctx context.Context, amount int64, autoCashout float64) (model.BetReceipt, error) {
	var (
		roundID string
		check   error
	)
	if err := e.do(ctx, func() {
		roundID = e.roundID
		check = e.ledger.Validate(amount, autoCashout)
	}); err != nil {
		return model.BetReceipt{}, err
	}
	if check != nil {
		return model.BetReceipt{}, check
	}

	env, err := e.tr.Request(ctx, protocol.BetRequest, protocol.BetRequestData{
		RoundID:     roundID,
		Amount:      amount,
		AutoTakeout: autoCashout,
	}, 0)
	if err != nil {
		return model.BetReceipt{}, fmt.Errorf("place bet: %w", err)
	}
	res, err := protocol.Bind[protocol.BetResultData](env)
	if err != nil {
		return model.BetReceipt{}, err
	}

	var receipt model.BetReceipt
	err = e.do(ctx, func() {
		idx := e.ledger.ApplyRemoteBet(amount, autoCashout, res.Balance)
		receipt = model.BetReceipt{
			RoundID: res.RoundID,
			Index:   idx,
			Bet:     e.ledger.Bets()[idx],
			Balance: e.ledger.Balance(),
		}
	})
	return receipt, err
}

// Takeout asks the server to cash out every active bet and mirrors it.
func (e *Engine) Takeout(ctx context.Context) (model.TakeoutReceipt, error) {
	var (
		roundID string
		check   error
	)
	if err := e.do(ctx, func() {
		roundID = e.roundID
		switch {
		case !e.machine.Is(model.PhaseRunning):
			check = model.ErrInvalidPhase
		case e.ledger.ActiveBetCount() == 0:
			check = model.ErrNothingToCashout
		}
	}); err != nil {
		return model.TakeoutReceipt{}, err
	}
	if check != nil {
		return model.TakeoutReceipt{}, check
	}

	env, err := e.tr.Request(ctx, protocol.TakeoutRequest, protocol.TakeoutRequestData{RoundID: roundID}, 0)
	if err != nil {
		return model.TakeoutReceipt{}, fmt.Errorf("takeout: %w", err)
	}
	res, err := protocol.Bind[protocol.TakeoutResultData](env)
	if err != nil {
		return model.TakeoutReceipt{}, err
	}

	var receipt model.TakeoutReceipt
	err = e.do(ctx, func() {
		cashouts := e.mirrorCashout(res)
		receipt = model.TakeoutReceipt{
			RoundID:    res.RoundID,
			Multiplier: res.Multiple,
			WinAmount:  res.WinAmount,
			Balance:    e.ledger.Balance(),
			Cashouts:   cashouts,
		}
	})
	return receipt, err
}

func (e *Engine) CurrentState(ctx context.Context) (model.GameState, error) {
	var s model.GameState
	err := e.do(ctx, func() {
		s = model.GameState{
			Phase:      e.machine.Current(),
			RoundID:    e.roundID,
			Multiplier: e.mult.Current(),
			Countdown:  e.countdown,
			Elapsed:    e.mult.Elapsed(),
		}
		if s.Phase.Revealed() {
			s.CrashPoint = e.crashPoint
		}
	})
	return s, err
}

func (e *Engine) Bets(ctx context.Context) ([]model.Bet, error) {
	var out []model.Bet
	err := e.do(ctx, func() {
		out = e.ledger.Bets()
	})
	return out, err
}

func (e *Engine) Balance(ctx context.Context) (int64, error) {
	var out int64
	err := e.do(ctx, func() {
		out = e.ledger.Balance()
	})
	return out, err
}

func (e *Engine) History(ctx context.Context) ([]model.HistoryRecord, error) {
	var out []model.HistoryRecord
	err := e.do(ctx, func() {
		out = e.historyCopy()
	})
	return out, err
}

// RecentAutoCashouts - targets the player used lately, newest first
func (e *Engine) RecentAutoCashouts(ctx context.Context) ([]float64, error) {
	var out []float64
	err := e.do(ctx, func() {
		out = e.ledger.RecentAutoCashouts()
	})
	return out, err
}
