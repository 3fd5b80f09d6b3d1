package auth

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/pkg/token"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxNameLength = 32

// Guest creates a wallet with the starting balance and issues an access token for it.
func (s *serv) Guest(ctx context.Context, name string) (*model.AuthData, error) {
	user := model.User{
		ID:        uuid.NewString(),
		Name:      guestName(name),
		Balance:   s.balance,
		CreatedAt: time.Now().UTC(),
	}

	var accessToken string
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		var err error
		accessToken, err = token.GenerateAccessToken(
			user,
			s.jwtConfig.AccessTokenSecretKey(),
			s.jwtConfig.AccessTokenDuration())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("guest created", zap.String("user_id", user.ID), zap.String("name", user.Name))

	return &model.AuthData{
		AccessToken: accessToken,
		User:        user,
	}, nil
}

// Authenticate - verifies an access token
func (s *serv) Authenticate(accessToken string) (*model.UserClaims, error) {
	return token.VerifyToken(accessToken, s.jwtConfig.AccessTokenSecretKey())
}

// Me - the stored user behind the claims
func (s *serv) Me(ctx context.Context, userID string) (model.User, error) {
	return s.userRepo.GetUser(ctx, userID)
}

func guestName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	if r := []rune(name); len(r) > maxNameLength {
		name = string(r[:maxNameLength])
	}
	return name
}
