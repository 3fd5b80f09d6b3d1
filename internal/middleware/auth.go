package middleware

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/pkg/resp"
	"net/http"
	"strings"
)

type claimsKey struct{}

// TokenVerifier - checks an access token
type TokenVerifier interface {
	Authenticate(accessToken string) (*model.UserClaims, error)
}

// Auth rejects requests without a valid bearer token and stores the claims in the context.
func Auth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r)
			if !ok {
				resp.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := v.Authenticate(token)
			if err != nil {
				resp.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, claims *model.UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom - claims stored by Auth, nil when absent
func ClaimsFrom(ctx context.Context) *model.UserClaims {
	claims, _ := ctx.Value(claimsKey{}).(*model.UserClaims)
	return claims
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
