package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sereno-app/sereno-api/internal/api/response"
	"github.com/sereno-app/sereno-api/internal/repository/redis"
	"github.com/sereno-app/sereno-api/internal/security"
)

type contextKey string

const (
	UserIDKey      contextKey = "userID"
	UserEmailKey   contextKey = "userEmail"
	AccessTokenKey contextKey = "accessToken"
)

// authFailedMessage is the fixed body for every authentication failure,
// matching the client contract.
const authFailedMessage = "Please authenticate."

// AuthMiddleware handles JWT authentication with a per-user token
// deny-list: a signature-valid token that was revoked by logout is
// rejected like any other bad credential.
type AuthMiddleware struct {
	jwtManager *security.JWTManager
	denylist   *redis.TokenDenylist
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *security.JWTManager, denylist *redis.TokenDenylist) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, denylist: denylist}
}

// Authenticate validates the bearer token and checks the deny-list
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, authFailedMessage)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(w, authFailedMessage)
			return
		}
		token := parts[1]

		claims, err := m.jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(w, authFailedMessage)
			return
		}

		revoked, err := m.denylist.IsInvalidated(r.Context(), claims.UserID, token)
		if err != nil {
			// Fail closed: if revocation state is unknown, deny.
			log.Error().Err(err).Msg("token deny-list check failed")
			response.Unauthorized(w, authFailedMessage)
			return
		}
		if revoked {
			response.Unauthorized(w, authFailedMessage)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = context.WithValue(ctx, AccessTokenKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmail gets the user email from context
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetAccessToken gets the raw bearer token from context
func GetAccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(AccessTokenKey).(string)
	return token, ok
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	rateLimiter *redis.RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies rate limiting based on user ID
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			response.Unauthorized(w, authFailedMessage)
			return
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), userID)
		if err != nil {
			// If the rate limiter fails, allow the request.
			log.Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.Format("2006-01-02T15:04:05Z"))

		if !allowed {
			response.TooManyRequests(w, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
