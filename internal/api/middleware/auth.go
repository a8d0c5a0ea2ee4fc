package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmartin/coursehub/internal/config"
	"github.com/jmartin/coursehub/internal/domain"
	"github.com/jmartin/coursehub/internal/service"
)

type contextKey string

const userKey contextKey = "user"

// Auth validates the access-token cookie on every protected request. An
// expired (but validly signed) access token triggers a transparent refresh:
// the refresh cookie is verified, the Session Cache consulted, and a rotated
// pair set as outgoing cookies. A malformed token never triggers a refresh.
func Auth(tokens *service.TokenService, cfg config.AuthConfig, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessCookie, err := r.Cookie(AccessTokenCookie)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "please login to access this resource")
				return
			}

			userID, err := tokens.ParseAccess(accessCookie.Value)
			if err == nil {
				user, serr := tokens.Session(r.Context(), userID)
				if serr != nil {
					if errors.Is(serr, domain.ErrSessionNotFound) {
						writeError(w, http.StatusUnauthorized, domain.ErrSessionNotFound.Error())
						return
					}
					log.Printf("ERROR [middleware.Auth] session lookup: %v", serr)
					writeError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
				return
			}

			if !errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "invalid access token")
				return
			}

			// Access token expired: attempt a silent refresh.
			refreshCookie, err := r.Cookie(RefreshTokenCookie)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "please login to access this resource")
				return
			}

			refreshID, err := tokens.ParseRefresh(refreshCookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid refresh token")
				return
			}

			user, err := tokens.Session(r.Context(), refreshID)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					writeError(w, http.StatusUnauthorized, domain.ErrSessionNotFound.Error())
					return
				}
				log.Printf("ERROR [middleware.Auth] session lookup: %v", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			pair, err := tokens.IssuePair(r.Context(), user)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token rotation: %v", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			SetAuthCookies(w, pair, cfg, secureCookies)
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// RequireRole rejects authenticated users whose role is not in the allowed
// set. Compose after Auth.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "please login to access this resource")
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				writeError(w, http.StatusForbidden, "you are not allowed to access this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated user attached by Auth.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}
