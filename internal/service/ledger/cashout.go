package ledger

import (
	"crash_backend/internal/event"
	"crash_backend/internal/model"
)

// CashoutSingle cashes out bet index at the round's current multiplier.
func (l *Ledger) CashoutSingle(index int) (model.Cashout, error) {
	if l.view.Phase() != model.PhaseRunning {
		return model.Cashout{}, model.ErrInvalidPhase
	}
	return l.cashoutAt(index, l.view.Multiplier(), false)
}

// CashoutAll cashes out every open bet in index order.
// ErrNothingToCashout means no bet was open.
func (l *Ledger) CashoutAll() ([]model.Cashout, error) {
	if l.view.Phase() != model.PhaseRunning {
		return nil, model.ErrInvalidPhase
	}

	multiplier := l.view.Multiplier()
	var out []model.Cashout
	for i := range l.bets {
		if l.bets[i].CashedOut {
			continue
		}
		c, err := l.cashoutAt(i, multiplier, false)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, model.ErrNothingToCashout
	}
	return out, nil
}

// CheckAutoCashout cashes out, in index order, every open bet whose target
// is at or below multiplier. Call once per tick.
func (l *Ledger) CheckAutoCashout(multiplier float64) []model.Cashout {
	if l.view.Phase() != model.PhaseRunning {
		return nil
	}

	var out []model.Cashout
	for i, b := range l.bets {
		if b.CashedOut || b.AutoCashout <= 0 || multiplier < b.AutoCashout {
			continue
		}
		c, err := l.cashoutAt(i, multiplier, true)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (l *Ledger) cashoutAt(index int, multiplier float64, auto bool) (model.Cashout, error) {
	if index < 0 || index >= len(l.bets) {
		return model.Cashout{}, model.ErrBetNotFound
	}
	bet := &l.bets[index]
	if bet.CashedOut {
		return model.Cashout{}, model.ErrAlreadyCashedOut
	}
	if multiplier <= 0 {
		return model.Cashout{}, model.ErrInvalidPhase
	}

	winnings := Winnings(bet.Amount, multiplier, l.limits.FeeRate)
	bet.CashedOut = true
	bet.CashoutMultiplier = multiplier
	bet.Winnings = winnings
	bet.Profit = winnings - bet.Amount
	l.balance += winnings

	c := model.Cashout{
		Index:      index,
		Multiplier: multiplier,
		Winnings:   winnings,
		Profit:     bet.Profit,
		Auto:       auto,
	}
	l.emit(event.CashedOut, event.Cashout{Owner: l.owner, Cashout: c, Balance: l.balance})
	l.emitBets()
	return c, nil
}
