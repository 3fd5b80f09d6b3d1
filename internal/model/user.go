package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User - wallet owner. Only id, display name and balance are stored
type User struct {
	ID        string
	Name      string
	Balance   int64
	CreatedAt time.Time
}

type UserClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type AuthData struct {
	AccessToken string
	User        User
}

// UserInfo - data the server pushes after a successful auth
type UserInfo struct {
	UserID   string
	Username string
	Avatar   string
	Balance  int64
}
