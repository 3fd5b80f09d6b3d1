package ledger

import (
	"crash_backend/internal/model"
)

// ApplyRemoteBet records a bet the remote authority already accepted.
// Phase is not checked because the server decided; balance is authoritative.
func (l *Ledger) ApplyRemoteBet(amount int64, autoCashout float64, balance int64) int {
	idx := l.appendBet(amount, autoCashout)
	l.SetBalance(balance)
	return idx
}

// ApplyRemoteCashout mirrors a server-side cash-out of every open bet at multiplier.
func (l *Ledger) ApplyRemoteCashout(multiplier float64, auto bool, balance int64) []model.Cashout {
	var out []model.Cashout
	for i := range l.bets {
		if l.bets[i].CashedOut {
			continue
		}
		if auto && (l.bets[i].AutoCashout <= 0 || l.bets[i].AutoCashout > multiplier) {
			continue
		}
		c, err := l.cashoutAt(i, multiplier, auto)
		if err == nil {
			out = append(out, c)
		}
	}
	l.SetBalance(balance)
	return out
}

// ApplyRemoteCashoutAt mirrors a server-side cash-out of the given bets only.
// Bets already cashed locally and unknown indices are skipped.
func (l *Ledger) ApplyRemoteCashoutAt(indices []int, multiplier float64, auto bool, balance int64) []model.Cashout {
	var out []model.Cashout
	for _, i := range indices {
		c, err := l.cashoutAt(i, multiplier, auto)
		if err == nil {
			out = append(out, c)
		}
	}
	l.SetBalance(balance)
	return out
}
