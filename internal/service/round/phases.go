package round

import (
	"crash_backend/internal/event"
	"crash_backend/internal/model"
	"crash_backend/internal/service/ledger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (e *Engine) enterIdle(model.Phase) error {
	e.idleLeft = e.cfg.IdleDuration().Seconds()
	return nil
}

func (e *Engine) updateIdle(dt float64) error {
	e.idleLeft -= dt
	if e.idleLeft <= 0 {
		e.machine.ChangeState(model.PhaseWager)
	}
	return nil
}

func (e *Engine) enterWager(model.Phase) error {
	for id := range e.departed {
		e.remove(id)
	}
	e.each(func(_ string, l *ledger.Ledger) {
		l.ResetForNewRound()
	})

	e.mult.Reset()
	e.round = model.Round{
		ID:            uuid.NewString(),
		Phase:         model.PhaseWager,
		CrashPoint:    e.crash.Draw(),
		StartedAt:     e.clk.Now(),
		WagerDuration: e.cfg.WagerDuration(),
		DeadDuration:  e.cfg.DeadDuration(),
	}
	e.countdown = e.cfg.WagerDuration().Seconds()

	e.log.Debug("wager opened", zap.String("round_id", e.round.ID))
	e.bus.Emit(event.WagerStarted, event.Wager{RoundID: e.round.ID, Countdown: e.countdown})
	e.emitPlayers()
	return nil
}

func (e *Engine) updateWager(dt float64) error {
	e.countdown -= dt
	if e.countdown <= 0 {
		e.countdown = 0
		e.machine.ChangeState(model.PhaseRunning)
		return nil
	}
	e.bus.Emit(event.CountdownTick, event.Countdown{
		RoundID:   e.round.ID,
		Phase:     model.PhaseWager,
		Remaining: e.countdown,
	})
	return nil
}

func (e *Engine) enterRunning(model.Phase) error {
	e.mult.Start(e.round.CrashPoint)
	e.bus.Emit(event.RoundStarted, event.Start{RoundID: e.round.ID})
	return nil
}

// updateRunning advances the curve. On the tick that reaches the crash point
// the round crashes and no auto cashout is evaluated.
func (e *Engine) updateRunning(dt float64) error {
	m := e.mult.Advance(dt)
	if e.mult.Reached() {
		e.machine.ChangeState(model.PhaseCrashed)
		return nil
	}

	cashed := false
	e.each(func(_ string, l *ledger.Ledger) {
		if len(e.policy.Evaluate(l, model.PhaseRunning, m)) > 0 {
			cashed = true
		}
	})
	if cashed {
		e.emitPlayers()
	}

	e.bus.Emit(event.MultiplierUpdated, event.Multiplier{
		RoundID:    e.round.ID,
		Multiplier: m,
		Elapsed:    e.mult.Elapsed(),
	})
	return nil
}

func (e *Engine) enterCrashed(model.Phase) error {
	crash := e.round.CrashPoint
	e.mult.Freeze(crash)

	result := model.RoundResult{
		RoundID:    e.round.ID,
		CrashPoint: crash,
		SettledAt:  e.clk.Now(),
	}
	e.each(func(id string, l *ledger.Ledger) {
		summary := l.SettleRound(crash)
		if len(summary.Bets) == 0 {
			return
		}
		result.Players = append(result.Players, model.PlayerSummary{
			PlayerID:     id,
			Balance:      l.Balance(),
			RoundSummary: summary,
		})
	})

	e.record(model.HistoryRecord{RoundID: e.round.ID, CrashPoint: crash, Timestamp: result.SettledAt})

	e.log.Info("round crashed",
		zap.String("round_id", e.round.ID),
		zap.Float64("crash_point", crash),
		zap.Int("players", len(result.Players)))

	e.bus.Emit(event.RoundCrashed, event.Crash{RoundID: e.round.ID, CrashPoint: crash})
	e.bus.Emit(event.HistoryUpdated, event.History{Records: e.historyCopy(0)})
	e.bus.Emit(event.RoundSettled, event.Settle{Result: result})
	return nil
}

func (e *Engine) updateCrashed(float64) error {
	e.machine.ChangeState(model.PhaseSettle)
	return nil
}

func (e *Engine) enterSettle(model.Phase) error {
	e.countdown = e.cfg.DeadDuration().Seconds()
	return nil
}

func (e *Engine) updateSettle(dt float64) error {
	e.countdown -= dt
	if e.countdown <= 0 {
		e.countdown = 0
		e.machine.ChangeState(model.PhaseIdle)
		return nil
	}
	e.bus.Emit(event.CountdownTick, event.Countdown{
		RoundID:   e.round.ID,
		Phase:     model.PhaseSettle,
		Remaining: e.countdown,
	})
	return nil
}

// record prepends to the bounded history and updates the highs.
func (e *Engine) record(r model.HistoryRecord) {
	size := e.cfg.HistorySize()
	e.history = append([]model.HistoryRecord{r}, e.history...)
	if len(e.history) > size {
		e.history = e.history[:size]
	}
	if r.CrashPoint > e.todayHighest {
		e.todayHighest = r.CrashPoint
	}
	if r.CrashPoint > e.allTimeHighest {
		e.allTimeHighest = r.CrashPoint
	}
}

func (e *Engine) historyCopy(limit int) []model.HistoryRecord {
	n := len(e.history)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]model.HistoryRecord(nil), e.history[:n]...)
}
