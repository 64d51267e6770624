package middleware

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sportmatch-service/pkg/cache"
	"sportmatch-service/pkg/jwtutil"
	"sportmatch-service/pkg/response"
)

// ProfileStatusSource resolves the profile-completion state for a user.
// Implemented by the profile repository; the middleware caches results.
type ProfileStatusSource interface {
	ProfileStatus(ctx context.Context, userID string) (complete bool, setupStep int, err error)
}

const statusCacheTTL = 30 * time.Second

type AuthMiddleware struct {
	tokens   *jwtutil.Manager
	profiles ProfileStatusSource
	cache    *cache.Cache
}

func NewAuthMiddleware(tokens *jwtutil.Manager, profiles ProfileStatusSource, cache *cache.Cache) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		profiles: profiles,
		cache:    cache,
	}
}

func (am *AuthMiddleware) extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients cannot set headers from the browser
	return r.URL.Query().Get("token")
}

// profileStatusCached checks redis before hitting the repository. The cache
// entry is invalidated by the setup usecase on every step commit.
func (am *AuthMiddleware) profileStatusCached(ctx context.Context, userID string) (bool, int, error) {
	if am.cache != nil {
		if v, err := am.cache.Get(ctx, "profile_status", userID); err == nil && v != "" {
			// "<complete>:<step>", e.g. "0:2" or "1:4"
			parts := strings.SplitN(v, ":", 2)
			if len(parts) == 2 {
				step, convErr := strconv.Atoi(parts[1])
				if convErr == nil {
					return parts[0] == "1", step, nil
				}
			}
		}
	}

	complete, step, err := am.profiles.ProfileStatus(ctx, userID)
	if err != nil {
		return false, 0, err
	}

	if am.cache != nil {
		v := "0:" + strconv.Itoa(step)
		if complete {
			v = "1:" + strconv.Itoa(step)
		}
		if err := am.cache.Set(ctx, "profile_status", userID, v, statusCacheTTL); err != nil {
			log.Printf("[WARN] profile status cache set failed for %s: %v", userID, err)
		}
	}
	return complete, step, nil
}

// Require validates the session token and loads the profile-completion state
// into the request context. Anonymous requests are rejected here; routes that
// allow anonymous access simply do not use this middleware.
func (am *AuthMiddleware) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := am.extractToken(r)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, "Missing token")
				return
			}

			claims, err := am.tokens.ParseAndValidate(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			complete, step, err := am.profileStatusCached(r.Context(), claims.UserID)
			if err != nil {
				log.Printf("[WARN] profile status lookup failed for %s: %v", claims.UserID, err)
				response.Error(w, http.StatusUnauthorized, "Session validation failed")
				return
			}

			next.ServeHTTP(w, setContextValues(r, claims, token, complete, step))
		})
	}
}
