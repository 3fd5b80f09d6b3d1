package autocashout

import (
	"crash_backend/internal/model"
)

// Checker - anything that can auto cash out its own bets at a multiplier
type Checker interface {
	CheckAutoCashout(multiplier float64) []model.Cashout
}

// Policy decides when auto cashout runs. It holds no state: once per
// multiplier tick while the round is running it delegates to the checker.
type Policy struct{}

func (Policy) Evaluate(c Checker, phase model.Phase, multiplier float64) []model.Cashout {
	if c == nil || phase != model.PhaseRunning {
		return nil
	}
	return c.CheckAutoCashout(multiplier)
}
