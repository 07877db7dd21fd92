package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(now time.Time) *service {
	svc := NewService(Config{
		Secret:   testSecret,
		Issuer:   "text-summarizer",
		TokenTTL: time.Hour,
	}, newTestLogger()).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func TestService_IssueAndValidate(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	svc := newTestService(now)

	token, err := svc.IssueToken(context.Background(), " batch-client ")
	require.NoError(t, err)
	require.NotEmpty(t, token.Value)
	require.Equal(t, now.Add(time.Hour), token.ExpiresAt)

	claims, err := svc.ValidateToken(context.Background(), token.Value)
	require.NoError(t, err)
	require.Equal(t, "batch-client", claims.Subject)
	require.NotEmpty(t, claims.TokenID)
	require.True(t, claims.ExpiresAt.Equal(token.ExpiresAt))
}

func TestService_IssueRequiresSubject(t *testing.T) {
	_, err := newTestService(time.Now()).IssueToken(context.Background(), "  ")
	require.True(t, apperrors.IsCode(err, CodeAuthError))
}

func TestService_ValidateRejects(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	svc := newTestService(now)
	valid, err := svc.IssueToken(context.Background(), "client")
	require.NoError(t, err)

	other := NewService(Config{Secret: "ffffffffffffffffffffffffffffffff", Issuer: "text-summarizer", TokenTTL: time.Hour}, newTestLogger())
	forged, err := other.IssueToken(context.Background(), "client")
	require.NoError(t, err)

	foreignIssuer := NewService(Config{Secret: testSecret, Issuer: "someone-else", TokenTTL: time.Hour}, newTestLogger())
	foreign, err := foreignIssuer.IssueToken(context.Background(), "client")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "client"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		svc   *service
	}{
		{name: "empty", token: " ", svc: svc},
		{name: "garbage", token: "not-a-jwt", svc: svc},
		{name: "wrong secret", token: forged.Value, svc: svc},
		{name: "wrong issuer", token: foreign.Value, svc: svc},
		{name: "unsigned", token: none, svc: svc},
		{name: "expired", token: valid.Value, svc: newTestService(now.Add(2 * time.Hour))},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(context.Background(), tt.token)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, CodeInvalidToken))
		})
	}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}
