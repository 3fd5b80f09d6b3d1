package auth

import (
	"crash_backend/internal/config"
	"crash_backend/internal/logger"
	"crash_backend/internal/repository"

	"go.uber.org/zap"
)

type serv struct {
	txManager repository.Transactor
	userRepo  repository.UserRepository
	jwtConfig config.JWTConfig
	balance   int64
	log       *zap.Logger
}

// NewService - guest accounts are created with startingBalance
func NewService(
	txManager repository.Transactor,
	userRepo repository.UserRepository,
	jwtConfig config.JWTConfig,
	startingBalance int64,
	log *zap.Logger,
) *serv {
	return &serv{
		txManager: txManager,
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		balance:   startingBalance,
		log:       logger.OrNop(log).Named("auth"),
	}
}
