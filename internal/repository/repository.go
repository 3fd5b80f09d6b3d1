package repository

import (
	"context"
	"crash_backend/internal/model"
	statsModel "crash_backend/internal/repository/stats_repo/model"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

// Transactor runs fn inside one transaction. trm managers satisfy it.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, id string) (model.User, error)

	GetBalance(ctx context.Context, id string) (int64, error)
	UpdateBalance(ctx context.Context, id string, balance int64) error
}

type HistoryRepository interface {
	Add(ctx context.Context, record model.HistoryRecord) error
	// List - newest first
	List(ctx context.Context, limit int) ([]model.HistoryRecord, error)
}

type BetRepository interface {
	SaveBets(ctx context.Context, roundID, userID string, bets []model.Bet) error
}

type StatsRepository interface {
	HouseState() statsModel.HouseState
	UpdateState(bet, payout int64)
}
