package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmartin/coursehub/internal/cache"
	"github.com/jmartin/coursehub/internal/domain"
	"github.com/jmartin/coursehub/internal/service"
	"github.com/jmartin/coursehub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssuePair(t *testing.T) {
	cfg := testutil.TestConfig()
	sessionCache := cache.NewMemoryCache()
	tokens := service.NewTokenService(cfg.Auth, sessionCache)
	ctx := context.Background()

	user := &domain.User{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Role:      domain.RoleUser,
	}

	pair, err := tokens.IssuePair(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	// Both tokens carry the user ID
	accessID, err := tokens.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, accessID)

	refreshID, err := tokens.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshID)

	// Issuing the pair wrote the session snapshot
	data, err := sessionCache.Get(ctx, "session:"+user.ID.String())
	require.NoError(t, err)
	require.NotNil(t, data)

	var snapshot domain.User
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, user.Email, snapshot.Email)
}

func TestTokenService_ParseAccess_WrongSecret(t *testing.T) {
	cfg := testutil.TestConfig()
	sessionCache := cache.NewMemoryCache()
	tokens := service.NewTokenService(cfg.Auth, sessionCache)

	otherCfg := cfg.Auth
	otherCfg.AccessTokenSecret = "a-different-secret"
	otherTokens := service.NewTokenService(otherCfg, sessionCache)

	token, err := otherTokens.AccessToken(uuid.New())
	require.NoError(t, err)

	_, err = tokens.ParseAccess(token)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, jwt.ErrTokenExpired), "signature mismatch must not look like expiry")
}

func TestTokenService_ParseAccess_Expired(t *testing.T) {
	cfg := testutil.TestConfig()
	sessionCache := cache.NewMemoryCache()
	tokens := service.NewTokenService(cfg.Auth, sessionCache)

	expiredCfg := cfg.Auth
	expiredCfg.AccessTokenTTL = -time.Minute
	expiredTokens := service.NewTokenService(expiredCfg, sessionCache)

	token, err := expiredTokens.AccessToken(uuid.New())
	require.NoError(t, err)

	_, err = tokens.ParseAccess(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestTokenService_SessionLifecycle(t *testing.T) {
	cfg := testutil.TestConfig()
	sessionCache := cache.NewMemoryCache()
	tokens := service.NewTokenService(cfg.Auth, sessionCache)
	ctx := context.Background()

	user := &domain.User{ID: uuid.New(), Email: "ada@example.com"}

	// No session before issuance
	_, err := tokens.Session(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = tokens.IssuePair(ctx, user)
	require.NoError(t, err)

	got, err := tokens.Session(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	// RefreshSession overwrites the snapshot
	user.Email = "ada@new.example.com"
	require.NoError(t, tokens.RefreshSession(ctx, user))
	got, err = tokens.Session(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@new.example.com", got.Email)

	// ClearSession invalidates it
	require.NoError(t, tokens.ClearSession(ctx, user.ID))
	_, err = tokens.Session(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
