package ledger

import (
	"crash_backend/internal/model"
)

// SettleRound marks every open bet as a full loss and aggregates the round.
// Cashed out bets keep their profit. The crash point does not change the
// loss: an uncashed bet always loses its whole stake.
func (l *Ledger) SettleRound(crashPoint float64) model.RoundSummary {
	var summary model.RoundSummary
	for i := range l.bets {
		b := &l.bets[i]
		if !b.CashedOut {
			b.Winnings = 0
			b.Profit = -b.Amount
		}
		summary.TotalBet += b.Amount
		summary.TotalWin += b.Winnings
		summary.Profit += b.Profit
	}
	summary.Bets = l.Bets()

	if len(l.bets) > 0 {
		l.emitBets()
	}
	return summary
}

// ResetForNewRound archives the bets (when there were any) and clears the round.
func (l *Ledger) ResetForNewRound() {
	if len(l.bets) > 0 {
		l.lastRoundBets = l.bets
		l.bets = nil
		l.emitBets()
	}
}

// RepeatLastBets places the previous round's bets again. Either all of
// them are placed or none.
func (l *Ledger) RepeatLastBets() ([]model.Bet, error) {
	if l.view.Phase() != model.PhaseWager {
		return nil, model.ErrInvalidPhase
	}
	if len(l.lastRoundBets) == 0 {
		return nil, model.ErrNothingToRepeat
	}
	if len(l.bets)+len(l.lastRoundBets) > l.limits.MaxBetCount {
		return nil, model.ErrLimitExceeded
	}

	var total int64
	for _, b := range l.lastRoundBets {
		total += b.Amount
	}
	if total > l.balance {
		return nil, model.ErrInsufficientBalance
	}

	for _, b := range l.lastRoundBets {
		if err := l.Validate(b.Amount, b.AutoCashout); err != nil {
			return nil, err
		}
	}

	placed := make([]model.Bet, 0, len(l.lastRoundBets))
	for _, b := range l.lastRoundBets {
		idx := l.appendBet(b.Amount, b.AutoCashout)
		placed = append(placed, l.bets[idx])
	}
	return placed, nil
}
