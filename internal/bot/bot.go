// Package bot drives a remote round engine headlessly: one bet per round
// with a fixed auto cashout.
package bot

import (
	"context"
	"crash_backend/internal/event"
	"crash_backend/internal/logger"
	"crash_backend/internal/model"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Game - the part of the remote engine the bot drives
type Game interface {
	Bus() *event.Bus
	PlaceBet(ctx context.Context, amount int64, autoCashout float64) (model.BetReceipt, error)
	Balance(ctx context.Context) (int64, error)
}

type Strategy struct {
	Amount      int64
	AutoCashout float64
	// Rounds to play, zero means until stopped
	Rounds int
}

type Bot struct {
	game     Game
	strategy Strategy
	log      *zap.Logger

	wagers  chan string
	settled chan model.RoundResult
	fatal   chan error
}

func New(game Game, strategy Strategy, log *zap.Logger) *Bot {
	b := &Bot{
		game:     game,
		strategy: strategy,
		log:      logger.OrNop(log).Named("bot"),
		wagers:   make(chan string, 1),
		settled:  make(chan model.RoundResult, 8),
		fatal:    make(chan error, 1),
	}

	bus := game.Bus()
	event.Subscribe(bus, event.WagerStarted, func(e event.Wager) {
		offer(b.wagers, e.RoundID)
	}, b)
	event.Subscribe(bus, event.RoundSettled, func(e event.Settle) {
		offer(b.settled, e.Result)
	}, b)
	event.Subscribe(bus, event.Disconnected, func(e event.Disconnect) {
		if e.Fatal {
			offer(b.fatal, e.Err)
		}
	}, b)
	return b
}

// offer drops v when the previous value was not consumed yet.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// Run bets once per wager phase until ctx ends, the rounds are played or the
// session is lost for good.
func (b *Bot) Run(ctx context.Context) error {
	played := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-b.fatal:
			return fmt.Errorf("session lost: %w", err)
		case roundID := <-b.wagers:
			b.bet(ctx, roundID)
		case result := <-b.settled:
			if !b.report(result) {
				continue
			}
			played++
			if b.strategy.Rounds > 0 && played >= b.strategy.Rounds {
				balance, _ := b.game.Balance(ctx)
				b.log.Info("done", zap.Int("rounds", played), zap.Int64("balance", balance))
				return nil
			}
		}
	}
}

func (b *Bot) bet(ctx context.Context, roundID string) {
	receipt, err := b.game.PlaceBet(ctx, b.strategy.Amount, b.strategy.AutoCashout)
	switch {
	case err == nil:
		b.log.Info("bet placed",
			zap.String("round_id", roundID),
			zap.Int64("amount", receipt.Bet.Amount),
			zap.Float64("auto", receipt.Bet.AutoCashout),
			zap.Int64("balance", receipt.Balance))
	case model.IsValidation(err):
		b.log.Warn("bet rejected", zap.String("round_id", roundID), zap.Error(err))
	case errors.Is(err, context.Canceled):
	default:
		b.log.Error("bet failed", zap.String("round_id", roundID), zap.Error(err))
	}
}

// report logs the round and reports whether the bot took part in it.
func (b *Bot) report(r model.RoundResult) bool {
	for _, p := range r.Players {
		if p.TotalBet == 0 {
			continue
		}
		b.log.Info("round settled",
			zap.String("round_id", r.RoundID),
			zap.Float64("crash_point", r.CrashPoint),
			zap.Int64("bet", p.TotalBet),
			zap.Int64("win", p.TotalWin),
			zap.Int64("balance", p.Balance))
		return true
	}
	b.log.Debug("round watched", zap.String("round_id", r.RoundID), zap.Float64("crash_point", r.CrashPoint))
	return false
}
