package memory_repo

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/internal/repository"
	"fmt"
	"sync"
)

type userRepo struct {
	mtx   sync.RWMutex
	users map[string]model.User
}

// NewUserRepository - in-memory users, used when no database is configured
func NewUserRepository() repository.UserRepository {
	return &userRepo{
		users: make(map[string]model.User),
	}
}

func (r *userRepo) CreateUser(_ context.Context, user model.User) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	r.users[user.ID] = user
	return nil
}

func (r *userRepo) GetUser(_ context.Context, id string) (model.User, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepo) GetBalance(ctx context.Context, id string) (int64, error) {
	user, err := r.GetUser(ctx, id)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

func (r *userRepo) UpdateBalance(_ context.Context, id string, balance int64) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Balance = balance
	r.users[id] = user
	return nil
}
