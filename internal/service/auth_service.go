package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mission-desk/internal/cache"
	"mission-desk/internal/config"
	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/logger"
	"mission-desk/internal/util"
)

var (
	ErrInvalidJWTToken = errors.New("invalid jwt token")
	ErrRevokedToken    = errors.New("token has been revoked")
)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	// Logout revokes the token identified by claims until it would have expired anyway.
	Logout(ctx context.Context, claims *dto.AuthClaims) error
}

type authServiceImpl struct {
	accountRepo domain.AccountRepository
	cache       domain.Cache
	jwtCfg      config.JWTConfig
	now         func() time.Time
}

// NewAuthService creates a new instance of AuthService. cache may be nil, which disables revocation.
func NewAuthService(accountRepo domain.AccountRepository, cache domain.Cache, jwtCfg config.JWTConfig) (AuthService, error) {
	if jwtCfg.Secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	if jwtCfg.TTL <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	return &authServiceImpl{
		accountRepo: accountRepo,
		cache:       cache,
		jwtCfg:      jwtCfg,
		now:         time.Now,
	}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	account, err := s.accountRepo.GetAccountByParticipantID(ctx, req.ParticipantID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load account", err)
	}
	if account == nil {
		logger.Get().Info("Login attempt for unknown participant", zap.String("participantID", req.ParticipantID))
		return nil, domain.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		logger.Get().Info("Login attempt with wrong password", zap.String("accountID", account.ID))
		return nil, domain.NewInvalidCredentialsError()
	}

	token, expiresAt, err := s.createJWT(account)
	if err != nil {
		return nil, domain.NewInternalError("Failed to issue token", err)
	}

	logger.Get().Info("Participant logged in", zap.String("accountID", account.ID))
	return &dto.LoginResponse{
		Token:         token,
		AccountID:     account.ID,
		ParticipantID: account.ParticipantID,
		DisplayName:   account.DisplayName,
		CreatedAt:     account.CreatedAt,
		ExpiresAt:     expiresAt,
	}, nil
}

func (s *authServiceImpl) createJWT(account *domain.Account) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.jwtCfg.TTL)
	claims := dto.AuthClaims{
		AccountID:     account.ID,
		ParticipantID: account.ParticipantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        util.NewULID(),
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *authServiceImpl) ValidateToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return nil, ErrInvalidJWTToken
	}

	if s.cache != nil && claims.ID != "" {
		_, err := s.cache.Get(ctx, cache.RevokedTokenKey(claims.ID))
		switch {
		case err == nil:
			return nil, ErrRevokedToken
		case errors.Is(err, domain.ErrCacheMiss):
		default:
			// Redis being down must not lock every participant out.
			logger.Get().Warn("Revocation check failed, accepting token", zap.Error(err), zap.String("accountID", claims.AccountID))
		}
	}
	return claims, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, claims *dto.AuthClaims) error {
	if s.cache == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, cache.RevokedTokenKey(claims.ID), "1", ttl); err != nil {
		return domain.NewInternalError("Failed to revoke token", err)
	}
	logger.Get().Info("Participant logged out", zap.String("accountID", claims.AccountID))
	return nil
}
