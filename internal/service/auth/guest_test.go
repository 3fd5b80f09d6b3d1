package auth

import (
	"context"
	"crash_backend/internal/repository/memory_repo"
	"crash_backend/pkg/token"
	"errors"
	"strings"
	"testing"
	"time"
)

type jwtConfig struct{}

func (jwtConfig) AccessTokenSecretKey() []byte       { return []byte("test-secret") }
func (jwtConfig) AccessTokenDuration() time.Duration { return time.Hour }

func newTestService() *serv {
	return NewService(memory_repo.NewTxManager(), memory_repo.NewUserRepository(), jwtConfig{}, 100000, nil)
}

func TestGuestCreatesWallet(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	data, err := s.Guest(ctx, "  alice  ")
	if err != nil {
		t.Fatalf("guest: %v", err)
	}
	if data.User.Name != "alice" || data.User.Balance != 100000 || data.User.ID == "" {
		t.Fatalf("unexpected user %+v", data.User)
	}

	claims, err := s.Authenticate(data.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.ID != data.User.ID || claims.Name != "alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	user, err := s.Me(ctx, claims.ID)
	if err != nil || user.Balance != 100000 {
		t.Fatalf("me: %+v (%v)", user, err)
	}
}

func TestGuestNames(t *testing.T) {
	if got := guestName(""); got != "Player" {
		t.Fatalf("empty name: got %q", got)
	}
	long := strings.Repeat("я", 40)
	if got := []rune(guestName(long)); len(got) != maxNameLength {
		t.Fatalf("expected %d runes, got %d", maxNameLength, len(got))
	}
}

func TestAuthenticateRejectsForeignToken(t *testing.T) {
	s := newTestService()
	data, err := s.Guest(context.Background(), "bob")
	if err != nil {
		t.Fatalf("guest: %v", err)
	}

	if _, err := token.VerifyToken(data.AccessToken, []byte("other")); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := s.Authenticate(data.AccessToken + "x"); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
