package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/config"
	"github.com/retailorbit/smart-inventory/internal/domain"
)

func newTestJWTConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "smart-inventory"
	cfg.JWT.Secret = "test-secret-key-for-unit-tests"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 24 * time.Hour
	cfg.Auth.AdminAPIKey = "inv-admin-key"
	return cfg
}

func TestJWTService_ExchangeAPIKey(t *testing.T) {
	service := NewJWTService(newTestJWTConfig(), zap.NewNop())

	t.Run("valid api key", func(t *testing.T) {
		pair, err := service.ExchangeAPIKey("inv-admin-key")
		if err != nil {
			t.Fatalf("ExchangeAPIKey() error = %v", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Fatalf("ExchangeAPIKey() returned empty token pair")
		}

		claims, err := service.ValidateAccessToken(pair.AccessToken)
		if err != nil {
			t.Fatalf("ValidateAccessToken() error = %v", err)
		}
		if claims.Subject != "admin" {
			t.Errorf("subject = %v, want admin", claims.Subject)
		}
		if claims.Role != domain.RoleAdmin {
			t.Errorf("role = %v, want admin", claims.Role)
		}
	})

	t.Run("wrong api key", func(t *testing.T) {
		_, err := service.ExchangeAPIKey("wrong-key")
		if !apperror.IsKind(err, apperror.KindUnauthorized) {
			t.Errorf("ExchangeAPIKey() error = %v, want unauthorized", err)
		}
	})

	t.Run("empty api key", func(t *testing.T) {
		_, err := service.ExchangeAPIKey("")
		if !apperror.IsKind(err, apperror.KindUnauthorized) {
			t.Errorf("ExchangeAPIKey() error = %v, want unauthorized", err)
		}
	})
}

func TestJWTService_ValidateAccessToken(t *testing.T) {
	cfg := newTestJWTConfig()
	service := NewJWTService(cfg, zap.NewNop())
	principal := &domain.Principal{Subject: "admin", Role: domain.RoleAdmin}

	pair, err := service.GenerateTokenPair(principal)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		_, err := service.ValidateAccessToken(pair.RefreshToken)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateAccessToken(refresh) error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := service.ValidateAccessToken("not.a.token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateAccessToken() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("token signed with different secret rejected", func(t *testing.T) {
		otherCfg := newTestJWTConfig()
		otherCfg.JWT.Secret = "another-secret"
		otherPair, err := NewJWTService(otherCfg, zap.NewNop()).GenerateTokenPair(principal)
		if err != nil {
			t.Fatalf("GenerateTokenPair() error = %v", err)
		}
		if _, err := service.ValidateAccessToken(otherPair.AccessToken); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateAccessToken() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expiredCfg := newTestJWTConfig()
		expiredCfg.JWT.AccessTokenTTL = -time.Minute
		expiredPair, err := NewJWTService(expiredCfg, zap.NewNop()).GenerateTokenPair(principal)
		if err != nil {
			t.Fatalf("GenerateTokenPair() error = %v", err)
		}
		if _, err := service.ValidateAccessToken(expiredPair.AccessToken); !errors.Is(err, ErrTokenExpired) {
			t.Errorf("ValidateAccessToken(expired) error = %v, want ErrTokenExpired", err)
		}
	})

	t.Run("issuer mismatch rejected", func(t *testing.T) {
		otherApp := newTestJWTConfig()
		otherApp.App.Name = "other-app"
		otherPair, err := NewJWTService(otherApp, zap.NewNop()).GenerateTokenPair(principal)
		if err != nil {
			t.Fatalf("GenerateTokenPair() error = %v", err)
		}
		if _, err := service.ValidateAccessToken(otherPair.AccessToken); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateAccessToken(wrong issuer) error = %v, want ErrInvalidToken", err)
		}
	})
}

func TestJWTService_RefreshTokenPair(t *testing.T) {
	service := NewJWTService(newTestJWTConfig(), zap.NewNop())

	pair, err := service.ExchangeAPIKey("inv-admin-key")
	if err != nil {
		t.Fatalf("ExchangeAPIKey() error = %v", err)
	}

	t.Run("refresh yields working access token", func(t *testing.T) {
		refreshed, err := service.RefreshTokenPair(pair.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshTokenPair() error = %v", err)
		}
		claims, err := service.ValidateAccessToken(refreshed.AccessToken)
		if err != nil {
			t.Fatalf("ValidateAccessToken() error = %v", err)
		}
		if claims.Role != domain.RoleAdmin {
			t.Errorf("role = %v, want admin preserved through refresh", claims.Role)
		}
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		if _, err := service.RefreshTokenPair(pair.AccessToken); err == nil {
			t.Errorf("RefreshTokenPair(access) error = nil, want token type mismatch")
		}
	})
}
