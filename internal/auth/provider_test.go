package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/actual-software/weather-mcp/internal/config"
	customerrors "github.com/actual-software/weather-mcp/internal/errors"
)

const testSecret = "test-secret-key-for-weather-mcp"

func newTestProvider(t *testing.T) *JWTProvider {
	t.Helper()
	t.Setenv("WEATHER_TEST_JWT_SECRET", testSecret)

	p, err := NewJWTProvider(config.JWTConfig{
		Issuer:       "weather-mcp",
		Audience:     "weather-mcp",
		SecretKeyEnv: "WEATHER_TEST_JWT_SECRET",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	return p
}

func TestNewJWTProviderRequiresSecret(t *testing.T) {
	t.Setenv("WEATHER_TEST_JWT_SECRET", "")

	_, err := NewJWTProvider(config.JWTConfig{SecretKeyEnv: "WEATHER_TEST_JWT_SECRET"}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_TEST_JWT_SECRET")
}

func TestAuthenticate(t *testing.T) {
	p := newTestProvider(t)

	valid, _, err := IssueToken([]byte(testSecret), TokenRequest{
		Subject:  "alice",
		Issuer:   "weather-mcp",
		Audience: "weather-mcp",
		Scopes:   []string{ScopeToolsCall},
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	expired, _, err := IssueToken([]byte(testSecret), TokenRequest{
		Subject: "alice", Issuer: "weather-mcp", Audience: "weather-mcp", TTL: -time.Minute,
	})
	require.NoError(t, err)

	wrongIssuer, _, err := IssueToken([]byte(testSecret), TokenRequest{
		Subject: "alice", Issuer: "someone-else", Audience: "weather-mcp", TTL: time.Hour,
	})
	require.NoError(t, err)

	wrongAudience, _, err := IssueToken([]byte(testSecret), TokenRequest{
		Subject: "alice", Issuer: "weather-mcp", Audience: "other", TTL: time.Hour,
	})
	require.NoError(t, err)

	wrongSecret, _, err := IssueToken([]byte("another-secret"), TokenRequest{
		Subject: "alice", Issuer: "weather-mcp", Audience: "weather-mcp", TTL: time.Hour,
	})
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr string
	}{
		{name: "valid token", header: "Bearer " + valid},
		{name: "lowercase scheme", header: "bearer " + valid},
		{name: "missing header", header: "", wantErr: "missing Authorization header"},
		{name: "wrong scheme", header: "Basic abc", wantErr: "invalid Authorization header format"},
		{name: "expired", header: "Bearer " + expired, wantErr: "invalid token"},
		{name: "wrong issuer", header: "Bearer " + wrongIssuer, wantErr: "invalid issuer"},
		{name: "wrong audience", header: "Bearer " + wrongAudience, wantErr: "invalid audience"},
		{name: "wrong secret", header: "Bearer " + wrongSecret, wantErr: "invalid token"},
		{name: "alg none", header: "Bearer " + noneToken, wantErr: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			claims, err := p.Authenticate(req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "alice", claims.Subject)
				assert.True(t, claims.HasScope(ScopeToolsCall))

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, customerrors.IsType(err, customerrors.TypeUnauthorized))
			assert.Equal(t, http.StatusUnauthorized, customerrors.GetHTTPStatus(err))
		})
	}
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, _, err := IssueToken(nil, TokenRequest{TTL: time.Hour})
	require.Error(t, err)
}

func TestHasScopeWildcard(t *testing.T) {
	claims := &Claims{Scopes: []string{"weather:*"}}
	assert.True(t, claims.HasScope(ScopeToolsCall))
	assert.False(t, (&Claims{}).HasScope(ScopeToolsCall))
}
