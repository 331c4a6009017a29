package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mission-desk/internal/config"
	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

func newTestAuthService(t *testing.T, repo *MockAccountRepository, cache *MockCache) AuthService {
	t.Helper()
	var c domain.Cache
	if cache != nil {
		c = cache
	}
	svc, err := NewAuthService(repo, c, config.JWTConfig{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	return svc
}

func testAccount(t *testing.T) *domain.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.Account{
		ID:            "acc-1",
		ParticipantID: "P-001",
		PasswordHash:  string(hash),
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := NewAuthService(new(MockAccountRepository), nil, config.JWTConfig{TTL: time.Hour})
	assert.Error(t, err)
}

func TestAuthService_Login(t *testing.T) {
	account := testAccount(t)

	t.Run("success issues a token bound to the account", func(t *testing.T) {
		repo := new(MockAccountRepository)
		repo.On("GetAccountByParticipantID", mock.Anything, "P-001").Return(account, nil)
		cache := new(MockCache)
		cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return("", domain.ErrCacheMiss)
		svc := newTestAuthService(t, repo, cache)

		resp, err := svc.Login(context.Background(), &dto.LoginRequest{ParticipantID: "P-001", Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, "acc-1", resp.AccountID)
		assert.Equal(t, "P-001", resp.ParticipantID)
		assert.Equal(t, account.CreatedAt, resp.CreatedAt)
		assert.NotEmpty(t, resp.Token)

		claims, err := svc.ValidateToken(context.Background(), resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", claims.AccountID)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockAccountRepository)
		repo.On("GetAccountByParticipantID", mock.Anything, "P-001").Return(account, nil)
		svc := newTestAuthService(t, repo, nil)

		_, err := svc.Login(context.Background(), &dto.LoginRequest{ParticipantID: "P-001", Password: "nope"})
		assert.True(t, domain.HasCode(err, domain.CodeInvalidCredentials))
	})

	t.Run("unknown participant", func(t *testing.T) {
		repo := new(MockAccountRepository)
		repo.On("GetAccountByParticipantID", mock.Anything, "P-404").Return(nil, nil)
		svc := newTestAuthService(t, repo, nil)

		_, err := svc.Login(context.Background(), &dto.LoginRequest{ParticipantID: "P-404", Password: "x"})
		assert.True(t, domain.HasCode(err, domain.CodeInvalidCredentials))
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockAccountRepository)
		repo.On("GetAccountByParticipantID", mock.Anything, "P-001").Return(nil, errors.New("db down"))
		svc := newTestAuthService(t, repo, nil)

		_, err := svc.Login(context.Background(), &dto.LoginRequest{ParticipantID: "P-001", Password: "s3cret"})
		assert.True(t, domain.HasCode(err, domain.CodeInternal))
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	account := testAccount(t)
	repo := new(MockAccountRepository)
	repo.On("GetAccountByParticipantID", mock.Anything, "P-001").Return(account, nil)

	t.Run("garbage token", func(t *testing.T) {
		svc := newTestAuthService(t, repo, nil)
		_, err := svc.ValidateToken(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, err := NewAuthService(repo, nil, config.JWTConfig{Secret: "other", TTL: time.Hour})
		require.NoError(t, err)
		resp, err := other.Login(context.Background(), &dto.LoginRequest{ParticipantID: "P-001", Password: "s3cret"})
		require.NoError(t, err)

		svc := newTestAuthService(t, repo, nil)
		_, err = svc.ValidateToken(context.Background(), resp.Token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("revoked token", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return("1", nil)
		svc := newTestAuthService(t, repo, cache)
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{ParticipantID: "P-001", Password: "s3cret"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(context.Background(), resp.Token)
		assert.ErrorIs(t, err, ErrRevokedToken)
	})

	t.Run("cache failure accepts the token", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return("", errors.New("redis down"))
		svc := newTestAuthService(t, repo, cache)
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{ParticipantID: "P-001", Password: "s3cret"})
		require.NoError(t, err)

		claims, err := svc.ValidateToken(context.Background(), resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", claims.AccountID)
	})
}

func TestAuthService_Logout(t *testing.T) {
	account := testAccount(t)
	repo := new(MockAccountRepository)
	repo.On("GetAccountByParticipantID", mock.Anything, "P-001").Return(account, nil)

	cache := new(MockCache)
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return("", domain.ErrCacheMiss).Once()
	svc := newTestAuthService(t, repo, cache)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{ParticipantID: "P-001", Password: "s3cret"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)

	cache.On("Set", mock.Anything, "missiondesk:auth:revoked:"+claims.ID, "1",
		mock.MatchedBy(func(ttl time.Duration) bool { return ttl > 0 && ttl <= time.Hour })).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), claims))
	cache.AssertExpectations(t)
}
