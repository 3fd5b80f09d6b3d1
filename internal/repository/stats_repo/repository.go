package stats_repo

import (
	repoModel "crash_backend/internal/repository/stats_repo/model"
	"sync"
)

// defaultWindowSize - rounds kept for the window RTP
const defaultWindowSize = 500

// StateRepo - in-memory house statistics
type StateRepo struct {
	mtx   sync.RWMutex
	state repoModel.HouseState
}

// NewStatsRepository - targetRTP in percent
func NewStatsRepository(targetRTP float64) *StateRepo {
	return &StateRepo{
		state: repoModel.HouseState{
			TargetRTP:   targetRTP,
			RoundWindow: make([]repoModel.RoundResult, 0),
			WindowSize:  defaultWindowSize,
		},
	}
}

// HouseState returns a copy of the current totals.
func (r *StateRepo) HouseState() repoModel.HouseState {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := r.state
	out.RoundWindow = append([]repoModel.RoundResult(nil), r.state.RoundWindow...)
	return out
}

// UpdateState adds one settled round.
func (r *StateRepo) UpdateState(bet, payout int64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.state.TotalRounds++
	r.state.TotalBet += bet
	r.state.TotalPayout += payout
	if r.state.TotalBet > 0 {
		r.state.CurrentRTP = float64(r.state.TotalPayout) / float64(r.state.TotalBet) * 100
	}

	roundRTP := 0.0
	if bet > 0 {
		roundRTP = float64(payout) / float64(bet) * 100
	}
	r.state.RoundWindow = append(r.state.RoundWindow, repoModel.RoundResult{
		Bet:    bet,
		Payout: payout,
		RTP:    roundRTP,
	})
	if len(r.state.RoundWindow) > r.state.WindowSize {
		r.state.RoundWindow = r.state.RoundWindow[1:]
	}

	var windowBet, windowPayout int64
	for _, round := range r.state.RoundWindow {
		windowBet += round.Bet
		windowPayout += round.Payout
	}
	if windowBet > 0 {
		r.state.WindowRTP = float64(windowPayout) / float64(windowBet) * 100
	} else {
		r.state.WindowRTP = 0
	}
}
