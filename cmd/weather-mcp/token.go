package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/actual-software/weather-mcp/internal/auth"
	"github.com/actual-software/weather-mcp/internal/config"
	"github.com/actual-software/weather-mcp/internal/errors"
)

const defaultTokenTTL = 24 * time.Hour

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage bearer tokens for the MCP endpoints",
	}

	cmd.AddCommand(tokenCreateCmd())

	return cmd
}

// tokenCreateParams holds parameters for token creation.
type tokenCreateParams struct {
	subject string
	scopes  []string
	ttl     time.Duration
}

func parseTokenParams(cmd *cobra.Command) (*tokenCreateParams, error) {
	subject, err := cmd.Flags().GetString("subject")
	if err != nil {
		return nil, fmt.Errorf("failed to get subject flag: %w", err)
	}

	scopesStr, err := cmd.Flags().GetString("scopes")
	if err != nil {
		return nil, fmt.Errorf("failed to get scopes flag: %w", err)
	}

	ttl, err := cmd.Flags().GetDuration("ttl")
	if err != nil {
		return nil, fmt.Errorf("failed to get ttl flag: %w", err)
	}

	if ttl <= 0 {
		return nil, errors.NewInvalidArgumentError("ttl", "must be positive")
	}

	var scopes []string

	for _, scope := range strings.Split(scopesStr, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			scopes = append(scopes, scope)
		}
	}

	return &tokenCreateParams{subject: subject, scopes: scopes, ttl: ttl}, nil
}

func createToken(cfg *config.Config, params *tokenCreateParams) (string, time.Time, error) {
	secretEnv := cfg.Auth.JWT.SecretKeyEnv

	secret := os.Getenv(secretEnv)
	if secret == "" {
		return "", time.Time{}, errors.NewConfigError("auth.jwt.secret_key_env", secretEnv+" is not set")
	}

	return auth.IssueToken([]byte(secret), auth.TokenRequest{
		Subject:  params.subject,
		Issuer:   cfg.Auth.JWT.Issuer,
		Audience: cfg.Auth.JWT.Audience,
		Scopes:   params.scopes,
		TTL:      params.ttl,
		ID:       uuid.NewString(),
	})
}

func tokenCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Sign a new bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			params, err := parseTokenParams(cmd)
			if err != nil {
				return err
			}

			tokenString, expiresAt, err := createToken(cfg, params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Token: %s\n", tokenString)
			fmt.Fprintf(out, "Expires: %s\n", expiresAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Subject: %s\n", params.subject)
			fmt.Fprintf(out, "Scopes: %s\n", strings.Join(params.scopes, ","))

			return nil
		},
	}

	cmd.Flags().StringP("subject", "s", "weather-client", "Token subject")
	cmd.Flags().String("scopes", auth.ScopeToolsCall, "Comma-separated list of scopes")
	cmd.Flags().Duration("ttl", defaultTokenTTL, "Token lifetime")

	return cmd
}
