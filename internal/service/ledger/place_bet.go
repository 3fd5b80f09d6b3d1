package ledger

import (
	"crash_backend/internal/model"
)

// Validate checks a bet against phase, count, range, auto cashout and balance
// in that order, without changing anything.
func (l *Ledger) Validate(amount int64, autoCashout float64) error {
	if l.view.Phase() != model.PhaseWager {
		return model.ErrInvalidPhase
	}
	if len(l.bets) >= l.limits.MaxBetCount {
		return model.ErrLimitExceeded
	}
	if amount < l.limits.MinBet || amount > l.limits.MaxBet {
		return model.ErrOutOfRange
	}
	if autoCashout != 0 && (autoCashout <= 1 ||
		autoCashout < l.limits.AutoCashoutMin ||
		autoCashout > l.limits.AutoCashoutMax) {
		return model.ErrInvalidAutoCashout
	}
	if amount > l.balance {
		return model.ErrInsufficientBalance
	}
	return nil
}

// PlaceBet debits amount and appends a bet. autoCashout 0 means manual only.
// Returns the index of the new bet.
func (l *Ledger) PlaceBet(amount int64, autoCashout float64) (int, model.Bet, error) {
	if err := l.Validate(amount, autoCashout); err != nil {
		return 0, model.Bet{}, err
	}
	return l.appendBet(amount, autoCashout), l.bets[len(l.bets)-1], nil
}

func (l *Ledger) appendBet(amount int64, autoCashout float64) int {
	l.balance -= amount
	l.bets = append(l.bets, model.Bet{
		Amount:      amount,
		AutoCashout: autoCashout,
		PlacedAt:    l.now(),
	})
	if autoCashout > 0 {
		l.rememberAutoCashout(autoCashout)
	}
	l.emitBets()
	return len(l.bets) - 1
}
