package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/model"
)

const tokenIssuer = "dqsync"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMisconfigured = errors.New("auth config invalid")
)

// TokenService - API bearer token 발급/검증 (HS256)
type TokenService struct {
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("%w: invalid JWT_TOKEN_TTL", ErrMisconfigured)
	}
	return &TokenService{
		jwtSecret: []byte(cfg.JWTSecret),
		ttl:       cfg.TokenTTL,
		now:       time.Now,
	}, nil
}

// IssueToken - subject에 대한 access token 발급
func (s *TokenService) IssueToken(subject string) (*model.TokenResponse, error) {
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.ttl.Seconds()),
	}, nil
}

func (s *TokenService) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	return &model.AuthUser{Subject: claims.Subject}, nil
}
