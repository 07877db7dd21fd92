package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
)

// Failure codes reported by the token service.
const (
	CodeInvalidToken = "invalid_token"
	CodeAuthError    = "auth_error"
)

// Service issues and validates API bearer tokens.
type Service interface {
	IssueToken(ctx context.Context, subject string) (Token, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

type service struct {
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		now:    time.Now,
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) IssueToken(_ context.Context, subject string) (Token, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Token{}, apperrors.Wrap(CodeAuthError, "subject cannot be empty", nil)
	}
	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return Token{}, apperrors.Wrap(CodeAuthError, "failed to sign token", err)
	}
	s.logger.Info("token issued", "subject", subject, "expires_at", expires)
	return Token{Value: signed, ExpiresAt: expires}, nil
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token missing", nil)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token invalid", nil)
	}
	return Claims{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
