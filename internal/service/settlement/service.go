package settlement

import (
	"context"
	"crash_backend/internal/event"
	"crash_backend/internal/logger"
	"crash_backend/internal/model"
	"crash_backend/internal/repository"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	queueSize   = 64
	maxAttempts = 3
	retryDelay  = 200 * time.Millisecond
)

// Service persists settled rounds off the engine goroutine.
type Service struct {
	txManager repository.Transactor
	users     repository.UserRepository
	bets      repository.BetRepository
	history   repository.HistoryRepository
	stats     repository.StatsRepository
	log       *zap.Logger

	queue chan model.RoundResult
}

func NewService(
	txManager repository.Transactor,
	users repository.UserRepository,
	bets repository.BetRepository,
	history repository.HistoryRepository,
	stats repository.StatsRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		txManager: txManager,
		users:     users,
		bets:      bets,
		history:   history,
		stats:     stats,
		log:       logger.OrNop(log).Named("settlement"),
		queue:     make(chan model.RoundResult, queueSize),
	}
}

// Attach subscribes to settled rounds. The handler only enqueues.
func (s *Service) Attach(bus *event.Bus) event.Handle {
	return event.Subscribe(bus, event.RoundSettled, func(e event.Settle) {
		select {
		case s.queue <- e.Result:
		default:
			s.log.Error("settlement queue full, round dropped",
				zap.String("round_id", e.Result.RoundID))
		}
	}, s)
}

// Run persists queued rounds until ctx is done, then drains what is left.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return nil
		case result := <-s.queue:
			s.persistWithRetry(ctx, result)
		}
	}
}

func (s *Service) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case result := <-s.queue:
			s.persistWithRetry(ctx, result)
		default:
			return
		}
	}
}

func (s *Service) persistWithRetry(ctx context.Context, result model.RoundResult) {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, s.Persist(ctx, result)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(retryDelay)),
		backoff.WithMaxTries(maxAttempts),
	)
	if err != nil {
		s.log.Error("round not persisted", zap.String("round_id", result.RoundID), zap.Error(err))
		return
	}
	s.log.Debug("round persisted",
		zap.String("round_id", result.RoundID),
		zap.Int("players", len(result.Players)))
}

// Persist stores balances, bets and the history record in one transaction.
// Players without a stored wallet are skipped.
func (s *Service) Persist(ctx context.Context, result model.RoundResult) error {
	var totalBet, totalWin int64

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.history.Add(ctx, model.HistoryRecord{
			RoundID:    result.RoundID,
			CrashPoint: result.CrashPoint,
			Timestamp:  result.SettledAt,
		}); err != nil {
			return fmt.Errorf("add history: %w", err)
		}

		for _, p := range result.Players {
			err := s.users.UpdateBalance(ctx, p.PlayerID, p.Balance)
			if errors.Is(err, repository.ErrUserNotFound) {
				s.log.Warn("settled player has no wallet", zap.String("user_id", p.PlayerID))
				continue
			}
			if err != nil {
				return fmt.Errorf("update balance %s: %w", p.PlayerID, err)
			}
			if err := s.bets.SaveBets(ctx, result.RoundID, p.PlayerID, p.Bets); err != nil {
				return fmt.Errorf("save bets %s: %w", p.PlayerID, err)
			}
			totalBet += p.TotalBet
			totalWin += p.TotalWin
		}
		return nil
	})
	if err != nil {
		return err
	}

	if totalBet > 0 && s.stats != nil {
		s.stats.UpdateState(totalBet, totalWin)
	}
	return nil
}
