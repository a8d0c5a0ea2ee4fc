package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmartin/coursehub/internal/config"
	"github.com/jmartin/coursehub/internal/domain"
	"github.com/jmartin/coursehub/internal/repository"
)

const sessionKeyPrefix = "session:"

// TokenPair is the credential pair issued on login, social auth and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService signs and verifies access/refresh tokens and owns the
// Session Cache entries that back refresh validation. IssuePair is the only
// place session state is created or refreshed.
type TokenService struct {
	cfg   config.AuthConfig
	cache repository.SessionCache
}

func NewTokenService(cfg config.AuthConfig, cache repository.SessionCache) *TokenService {
	return &TokenService{cfg: cfg, cache: cache}
}

func (s *TokenService) AccessToken(userID uuid.UUID) (string, error) {
	return s.sign(userID, s.cfg.AccessTokenSecret, s.cfg.AccessTokenTTL)
}

func (s *TokenService) RefreshToken(userID uuid.UUID) (string, error) {
	return s.sign(userID, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenTTL)
}

func (s *TokenService) sign(userID uuid.UUID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// IssuePair mints a fresh access+refresh pair and writes the user snapshot
// into the Session Cache keyed by user ID. The entry carries a TTL equal to
// the refresh-token lifetime: once the refresh token is dead the session is
// unreachable anyway.
func (s *TokenService) IssuePair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.AccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.RefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	snapshot, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("marshal session snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+user.ID.String(), snapshot, s.cfg.RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("write session: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ParseAccess verifies an access token and returns the embedded user ID.
// Callers distinguish expiry from malformed tokens via
// errors.Is(err, jwt.ErrTokenExpired).
func (s *TokenService) ParseAccess(tokenString string) (uuid.UUID, error) {
	return s.parse(tokenString, s.cfg.AccessTokenSecret)
}

// ParseRefresh verifies a refresh token and returns the embedded user ID.
func (s *TokenService) ParseRefresh(tokenString string) (uuid.UUID, error) {
	return s.parse(tokenString, s.cfg.RefreshTokenSecret)
}

func (s *TokenService) parse(tokenString, secret string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing 'sub' claim")
	}

	return uuid.Parse(sub)
}

// Session loads the cached user snapshot for userID. A valid refresh token
// without a matching entry means the user must log in again.
func (s *TokenService) Session(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+userID.String())
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if data == nil {
		return nil, domain.ErrSessionNotFound
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return &user, nil
}

// RefreshSession overwrites the cached snapshot for an already logged-in
// user, keeping it consistent after profile or password updates.
func (s *TokenService) RefreshSession(ctx context.Context, user *domain.User) error {
	snapshot, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+user.ID.String(), snapshot, s.cfg.RefreshTokenTTL)
}

// ClearSession invalidates the session for userID (logout).
func (s *TokenService) ClearSession(ctx context.Context, userID uuid.UUID) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+userID.String())
}
