// Package auth implements the optional bearer-token authentication for the MCP endpoints.
package auth

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/config"
	customerrors "github.com/actual-software/weather-mcp/internal/errors"
)

const (
	authHeaderParts = 2 // Format: "Bearer <token>"

	// ScopeToolsCall allows tools/call requests.
	ScopeToolsCall = "weather:tools"
)

// Provider defines the authentication provider interface.
type Provider interface {
	Authenticate(r *http.Request) (*Claims, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes"`
}

// HasScope checks if the claims contain a specific scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope) || slices.Contains(c.Scopes, "weather:*")
}

// JWTProvider implements JWT-based authentication.
type JWTProvider struct {
	config    config.JWTConfig
	logger    *zap.Logger
	secretKey []byte
	publicKey *rsa.PublicKey
}

// NewJWTProvider creates a JWT provider. The HMAC secret is read from the
// environment variable named by SecretKeyEnv.
func NewJWTProvider(cfg config.JWTConfig, logger *zap.Logger) (*JWTProvider, error) {
	p := &JWTProvider{
		config: cfg,
		logger: logger,
	}

	if cfg.SecretKeyEnv != "" {
		secretKey := os.Getenv(cfg.SecretKeyEnv)
		if secretKey == "" && cfg.PublicKeyPath == "" {
			return nil, customerrors.NewConfigError("auth.jwt.secret_key_env",
				fmt.Sprintf("JWT secret key environment variable %s not set", cfg.SecretKeyEnv))
		}

		if secretKey != "" {
			p.secretKey = []byte(secretKey)
		}
	}

	if cfg.PublicKeyPath != "" {
		keyData, err := os.ReadFile(cfg.PublicKeyPath)
		if err != nil {
			return nil, customerrors.Wrap(err, "failed to read public key").
				WithComponent("auth").
				WithContext("path", cfg.PublicKeyPath)
		}

		publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}

		p.publicKey = publicKey
	}

	if p.secretKey == nil && p.publicKey == nil {
		return nil, customerrors.NewConfigError("auth.jwt", "no signing key configured")
	}

	return p, nil
}

// Authenticate authenticates an HTTP request.
func (p *JWTProvider) Authenticate(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, customerrors.NewAuthError("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", authHeaderParts)
	if len(parts) != authHeaderParts || !strings.EqualFold(parts[0], "Bearer") {
		return nil, customerrors.NewAuthError("invalid Authorization header format")
	}

	return p.ValidateToken(strings.TrimSpace(parts[1]))
}

// ValidateToken validates a JWT token.
func (p *JWTProvider) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, p.getSigningKey)
	if err != nil {
		return nil, customerrors.WrapWithType(err, customerrors.TypeUnauthorized, "invalid token").
			WithComponent("auth").
			WithHTTPStatus(http.StatusUnauthorized)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, customerrors.NewAuthError("invalid token claims")
	}

	if err := p.validateClaims(claims); err != nil {
		return nil, err
	}

	p.logger.Debug("Token validated successfully",
		zap.String("subject", claims.Subject),
		zap.Strings("scopes", claims.Scopes),
	)

	return claims, nil
}

func (p *JWTProvider) getSigningKey(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if p.secretKey == nil {
			return nil, fmt.Errorf("HMAC key not configured")
		}

		return p.secretKey, nil
	case *jwt.SigningMethodRSA:
		if p.publicKey == nil {
			return nil, fmt.Errorf("RSA public key not configured")
		}

		return p.publicKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

// validateClaims checks issuer and audience. Expiry and not-before are
// enforced by the parser.
func (p *JWTProvider) validateClaims(claims *Claims) error {
	if p.config.Issuer != "" && claims.Issuer != p.config.Issuer {
		return customerrors.NewAuthError("invalid issuer: " + claims.Issuer)
	}

	if p.config.Audience != "" && !slices.Contains([]string(claims.Audience), p.config.Audience) {
		return customerrors.NewAuthError("invalid audience")
	}

	return nil
}

// TokenRequest describes a token to sign.
type TokenRequest struct {
	Subject  string
	Issuer   string
	Audience string
	Scopes   []string
	TTL      time.Duration
	ID       string
}

// IssueToken signs an HS256 token accepted by JWTProvider.
func IssueToken(secret []byte, req TokenRequest) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, customerrors.NewConfigError("auth.jwt.secret_key_env", "secret must not be empty")
	}

	now := time.Now()
	expiresAt := now.Add(req.TTL)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.Subject,
			Issuer:    req.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        req.ID,
		},
		Scopes: req.Scopes,
	}

	if req.Audience != "" {
		claims.Audience = jwt.ClaimStrings{req.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}
