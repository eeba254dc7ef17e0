package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tftboard/tftboard/internal/domain"
	"github.com/tftboard/tftboard/internal/jwt"
)

// Key to store the authenticated user id in the request context.
type key int

const UserIdKey key = 0

type Auth struct {
	jwtService jwt.JwtService
}

func NewAuth(jwtService jwt.JwtService) *Auth {
	return &Auth{jwtService}
}

// NeedAuth rejects requests without a valid access token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := a.extractUserId(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserIdKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth populates the user id when a valid token is present but never
// rejects. Read endpoints are public; the composer gating happens client-side
// and the write endpoints enforce NeedAuth.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid, err := a.extractUserId(r); err == nil {
				ctx := context.WithValue(r.Context(), UserIdKey, uid)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractUserId reads the token from the accessToken cookie (browser
// clients) or the Authorization header (API clients).
func (a *Auth) extractUserId(r *http.Request) (domain.UserId, error) {
	var tokenString string
	if cookie, err := r.Cookie("accessToken"); err == nil {
		tokenString = cookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}
	return a.jwtService.DecodeToken(tokenString)
}

// UserIdFromContext returns the authenticated user id, if any.
func UserIdFromContext(ctx context.Context) (domain.UserId, bool) {
	uid, ok := ctx.Value(UserIdKey).(domain.UserId)
	return uid, ok && uid != ""
}
