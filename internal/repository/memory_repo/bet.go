package memory_repo

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/internal/repository"
	"sync"
)

type betKey struct {
	roundID string
	userID  string
}

// BetRepo - in-memory settled bets
type BetRepo struct {
	mtx  sync.RWMutex
	bets map[betKey][]model.Bet
}

func NewBetRepository() *BetRepo {
	return &BetRepo{
		bets: make(map[betKey][]model.Bet),
	}
}

var _ repository.BetRepository = (*BetRepo)(nil)

func (r *BetRepo) SaveBets(_ context.Context, roundID, userID string, bets []model.Bet) error {
	if len(bets) == 0 {
		return nil
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	key := betKey{roundID: roundID, userID: userID}
	if _, ok := r.bets[key]; ok {
		return nil
	}
	r.bets[key] = append([]model.Bet(nil), bets...)
	return nil
}

// Bets - stored bets of a player in a round
func (r *BetRepo) Bets(roundID, userID string) []model.Bet {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return append([]model.Bet(nil), r.bets[betKey{roundID: roundID, userID: userID}]...)
}
