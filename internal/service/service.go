package service

import (
	"context"
	"crash_backend/internal/config"
	"crash_backend/internal/event"
	"crash_backend/internal/model"
)

// GameService - the authoritative round engine as seen by the API surfaces
type GameService interface {
	Join(ctx context.Context, id string, balance int64) (int64, error)
	Leave(ctx context.Context, id string) error
	PlaceBet(ctx context.Context, id string, amount int64, autoCashout float64) (model.BetReceipt, error)
	CashoutSingle(ctx context.Context, id string, index int) (model.Cashout, int64, error)
	Takeout(ctx context.Context, id string) (model.TakeoutReceipt, error)
	RepeatLastBets(ctx context.Context, id string) ([]model.Bet, int64, error)

	Snapshot(ctx context.Context) (model.GameState, error)
	Bets(ctx context.Context, id string) ([]model.Bet, error)
	Balance(ctx context.Context, id string) (int64, error)
	History(ctx context.Context, limit int) ([]model.HistoryRecord, error)
	Players(ctx context.Context) ([]model.PlayerBet, error)
	Highest(ctx context.Context) (today, allTime float64, err error)

	Config() config.GameConfig
	Bus() *event.Bus
}

type AuthService interface {
	Guest(ctx context.Context, name string) (*model.AuthData, error)
	Authenticate(accessToken string) (*model.UserClaims, error)
	Me(ctx context.Context, userID string) (model.User, error)
}
